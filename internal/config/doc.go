// Package config loads runtime configuration for the userbook CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with --config / -c. YAML when the file
//     ends in .yaml or .yml, JSON otherwise.
//  3. Environment: USERBOOK_STORAGE, USERBOOK_LOG_FILE, USERBOOK_LOG_LEVEL.
//  4. Command-line flags that were set explicitly (applied by package cli).
//
// # File schema
//
//	{
//	  "storage": "users.json",
//	  "log_file": "user_operations.log",
//	  "log_level": "info",
//	  "log_format": "text",
//	  "s3": {"region": "us-east-1", "endpoint": "http://127.0.0.1:9000"}
//	}
//
// Unknown keys are rejected so a misspelt setting does not silently fall
// back to its default.
package config
