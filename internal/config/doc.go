// Package config loads the optional HCL configuration file of a link check
// run. Every attribute is optional; values left unset in the file fall back to
// command-line flags and built-in defaults.
//
// Expressions are evaluated with an `env` variable holding the process
// environment and a few string functions, so a file can contain for example:
//
//	columns = 3
//	workers = 64
//	timeout = "5s"
//
//	output {
//	  path = "${env.HOME}/links-checked.xlsx"
//	}
//
//	progress {
//	  url                  = lower(env.PROGRESS_URL)
//	  insecure_skip_verify = true
//	}
package config
