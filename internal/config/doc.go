// Package config loads, normalizes, and validates slidecast configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// OPENAI_API_KEY, including values provided through a .env file in the
// working directory. The Config type centralizes every knob the CLI and the
// pipeline need so credentials are threaded explicitly into the narration
// and transcription clients instead of being read from the environment deep
// inside the pipeline.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
