// Package config loads the application configuration for the digital
// transformation index report.
//
// # Configuration Sources
//
// Configuration is assembled in three layers, later layers winning:
//
//	1. Built-in defaults (Default)
//	2. An optional YAML file (config.yaml, configs/config.yaml or DTI_CONFIG_FILE)
//	3. Environment variables prefixed with DTI_
//
// # Environment Variables
//
// Nested fields are joined with underscores:
//
//	DTI_SERVER_PORT=8080
//	DTI_DATASET_FILE=两版合并后的年报数据_完整版.xlsx
//	DTI_DATASET_INDEX_COLUMN=数字化转型指数
//	DTI_DATASET_KEYWORDS=数字化,转型,指数
//	DTI_LOGGING_LEVEL=debug
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Tests and the CLI fall back to Default when no file or environment is present.
package config
