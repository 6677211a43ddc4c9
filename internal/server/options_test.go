package server

import (
	"testing"
	"time"

	"github.com/mcuadros/go-defaults"
	"gotest.tools/v3/assert"
)

func TestOptions_Defaults(t *testing.T) {
	var options Options
	defaults.SetDefaults(&options)

	expected := Options{
		BaseURL:           "http://localhost:5000",
		SessionDuration:   12 * time.Hour,
		ResetTokenTTL:     time.Hour,
		BcryptCost:        10,
		EnableLogSampling: true,
		RequestTimeout:    time.Minute,
		Addr:              ListenerOptions{HTTP: ":5000", Metrics: ":9090"},
		Email:             EmailOptions{FromName: "Ask"},
	}
	assert.DeepEqual(t, options, expected)
}

func TestOptions_Validate(t *testing.T) {
	type testCase struct {
		name        string
		setup       func(o *Options)
		expectedErr string
		expectedURL string
	}

	run := func(t *testing.T, tc testCase) {
		options := Options{SecretKey: "secret"}
		defaults.SetDefaults(&options)
		if tc.setup != nil {
			tc.setup(&options)
		}

		err := options.validate()
		if tc.expectedErr != "" {
			assert.ErrorContains(t, err, tc.expectedErr)
			return
		}
		assert.NilError(t, err)
		assert.Equal(t, options.BaseURL, tc.expectedURL)
	}

	testCases := []testCase{
		{
			name:        "defaults",
			expectedURL: "http://localhost:5000",
		},
		{
			name: "base URL without a scheme",
			setup: func(o *Options) {
				o.BaseURL = "ask.example.com:8080"
			},
			expectedURL: "http://ask.example.com:8080",
		},
		{
			name: "missing secret key",
			setup: func(o *Options) {
				o.SecretKey = ""
			},
			expectedErr: "SecretKey",
		},
		{
			name: "bcrypt cost out of range",
			setup: func(o *Options) {
				o.BcryptCost = 40
			},
			expectedErr: "BcryptCost",
		},
		{
			name: "invalid from address",
			setup: func(o *Options) {
				o.Email.FromAddress = "not an email"
			},
			expectedErr: "FromAddress",
		},
		{
			name: "invalid smtp server",
			setup: func(o *Options) {
				o.Email.SMTPServer = "smtp.example.com"
			},
			expectedErr: "SMTPServer",
		},
		{
			name: "zero session duration",
			setup: func(o *Options) {
				o.SessionDuration = 0
			},
			expectedErr: "SessionDuration",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			run(t, tc)
		})
	}
}

func TestGetDatabaseDriver(t *testing.T) {
	_, err := getDatabaseDriver(Options{})
	assert.ErrorContains(t, err, "one of dbFile or dbConnectionString is required")

	driver, err := getDatabaseDriver(Options{DBFile: t.TempDir() + "/ask.db"})
	assert.NilError(t, err)
	assert.Equal(t, driver.Name(), "sqlite")
}
