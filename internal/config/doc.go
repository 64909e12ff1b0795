// Package config loads the dashboard configuration.
//
// Values are resolved in this order, later sources winning:
//
//  1. Default()
//  2. a YAML file named by SAPDASH_CONFIG, or config.yaml / configs/config.yaml
//  3. SAPDASH_* environment variables, e.g. SAPDASH_SERVER_PORT or
//     SAPDASH_MESSAGING_BROKERS=kafka-1:9092,kafka-2:9092
//
// Variable names are SAPDASH_<SECTION>_<FIELD> with the Go field name split
// at word boundaries (SAPDASH_LOGGING_FILE_PATH,
// SAPDASH_SECURITY_RATE_LIMIT_RPS). Only prefixed names are read; a bare
// PATH or HOST never reaches the config.
//
// An example file:
//
//	server:
//	  port: 8080
//	storage:
//	  driver: sqlite
//	  path: data/events.db
//	messaging:
//	  driver: kafka
//	  brokers: [localhost:9092]
//	dashboard:
//	  refresh_interval: 30s
//	  csv_quoting: rfc4180
package config
