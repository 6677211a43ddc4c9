// Package cliopts loads the options of a command from a config file,
// environment variables, and command line flags.
package cliopts

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Options struct {
	// Filename is the path to a config file. The extension of the file
	// selects the format (yaml, json, or toml).
	Filename string
	// FS is used to read Filename. When nil the OS filesystem is used.
	FS afero.Fs

	EnvPrefix string
	Flags     FlagSet
}

// Load configuration into target. Defaults should be set on target before
// calling Load. Each source overrides the values of the sources before it:
//
//  1. the config file at opts.Filename
//  2. environment variables that start with opts.EnvPrefix
//  3. command line flags in opts.Flags that were set by the user
//
// Fields are matched by name. The field target.Email.SMTPServer is set from:
//
//	# config file (keys are not case sensitive)
//	email:
//	  smtpServer: value
//	# environment variable
//	PREFIX_EMAIL_SMTP_SERVER=value
//	# command line flag
//	--email-smtp-server=value
func Load(target interface{}, opts Options) error {
	if opts.Filename != "" {
		if err := loadFromFile(target, opts); err != nil {
			return err
		}
	}
	if opts.EnvPrefix != "" {
		if err := loadFromEnv(target, opts); err != nil {
			return err
		}
	}
	if opts.Flags != nil {
		if err := loadFromFlags(target, opts); err != nil {
			return err
		}
	}
	return nil
}

func loadFromFile(target interface{}, opts Options) error {
	fs := opts.FS
	if fs == nil {
		fs = afero.NewOsFs()
	}

	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(opts.Filename)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", opts.Filename, err)
	}

	cfg := decodeConfig(target)
	decoder, err := mapstructure.NewDecoder(&cfg)
	if err != nil {
		return err
	}
	if err := decoder.Decode(v.AllSettings()); err != nil {
		return fmt.Errorf("failed to decode from %s: %w", opts.Filename, err)
	}
	return nil
}

const fieldTagName = "config"

func decodeConfig(target interface{}) mapstructure.DecoderConfig {
	return mapstructure.DecoderConfig{
		Squash:  true,
		Result:  target,
		TagName: fieldTagName,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			hookFlagValue,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	}
}

// hookFlagValue converts the pflag.Value of a command line flag into a
// value that mapstructure can decode.
func hookFlagValue(from reflect.Value, _ reflect.Value) (interface{}, error) {
	switch v := from.Interface().(type) {
	case pflag.SliceValue:
		return v.GetSlice(), nil
	case pflag.Value:
		return v.String(), nil
	default:
		return v, nil
	}
}
