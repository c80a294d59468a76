package main

import (
	"os"
	"strconv"
	"time"
)

// overrideDurationFromEnv mirrors the indexer main's DUCKLAKE_CATALOG_URI
// env-override pattern: an environment variable, when set, wins over the
// flag default.
func overrideDurationFromEnv(name string, flagVal *time.Duration) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	*flagVal = d
	return nil
}

func overrideTimeFromEnv(name string, flagVal *time.Time) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	ts, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return err
	}
	*flagVal = ts
	return nil
}

func overrideStringFromEnv(name string, flagVal *string) {
	if raw := os.Getenv(name); raw != "" {
		*flagVal = raw
	}
}

func overrideBoolFromEnv(name string, flagVal *bool) error {
	raw := os.Getenv(name)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return err
	}
	*flagVal = b
	return nil
}
