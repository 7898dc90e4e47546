package config

// File is the decoded form of a configuration file. Pointer fields are nil
// when the attribute was not present.
type File struct {
	Columns         *int     `hcl:"columns,optional"`
	Workers         *int     `hcl:"workers,optional"`
	Timeout         *string  `hcl:"timeout,optional"`
	RateLimit       *float64 `hcl:"rate_limit,optional"`
	UserAgent       *string  `hcl:"user_agent,optional"`
	SingleRequest   *bool    `hcl:"single_request,optional"`
	HealthcheckPort *int     `hcl:"healthcheck_port,optional"`

	Input    *Table    `hcl:"input,block"`
	Output   *Table    `hcl:"output,block"`
	Progress *Progress `hcl:"progress,block"`
	Log      *Log      `hcl:"log,block"`
}

// Table describes an input or output table.
type Table struct {
	Path   *string `hcl:"path,optional"`
	Format *string `hcl:"format,optional"`
	Sheet  *string `hcl:"sheet,optional"`
}

// Progress configures the live progress feed.
type Progress struct {
	URL                *string `hcl:"url,optional"`
	Namespace          *string `hcl:"namespace,optional"`
	InsecureSkipVerify *bool   `hcl:"insecure_skip_verify,optional"`
}

// Log configures the application logger.
type Log struct {
	Level  *string `hcl:"level,optional"`
	Format *string `hcl:"format,optional"`
}
