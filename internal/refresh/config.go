package refresh

import (
	"fmt"
	"strings"
	"tabrefresh/lib/configutil"
	"tabrefresh/lib/tableau"

	"dario.cat/mergo"
)

// Config holds everything a run needs to reach and refresh a data source.
type Config struct {
	ServerUrl      string `json:"server_url"`
	SiteName       string `json:"site_name"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	ProjectName    string `json:"project_name"`
	DataSourceName string `json:"data_source_name"`
	ApiVersion     string `json:"api_version"`

	// EnvOverrides names the environment variables that supplied a value,
	// it never holds the values themselves.
	EnvOverrides []string `json:"-"`
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

const (
	placeholderMarker = "your_"
	exampleMarker     = "example"
)

type field struct {
	// reported is the name used in validation errors
	reported string
	primary  string
	legacy   string
	get      func(c *Config) *string
	// target fields are only needed to refresh, not to talk to the server
	target bool
}

var fields = []field{
	{
		reported: "TABLEAU_SERVER_URL",
		primary:  "TABLEAU_SERVER_URL",
		get:      func(c *Config) *string { return &c.ServerUrl },
	},
	{
		reported: "TABLEAU_USERNAME",
		primary:  "TABLEAU_USERNAME",
		get:      func(c *Config) *string { return &c.Username },
	},
	{
		reported: "TABLEAU_PASSWORD",
		primary:  "TABLEAU_PASSWORD",
		get:      func(c *Config) *string { return &c.Password },
	},
	{
		reported: "SITE_NAME",
		primary:  "TABLEAU_SITE_NAME",
		legacy:   "SITE_NAME",
		get:      func(c *Config) *string { return &c.SiteName },
	},
	{
		reported: "PROJECT_NAME",
		primary:  "TABLEAU_PROJECT_NAME",
		legacy:   "PROJECT_NAME",
		get:      func(c *Config) *string { return &c.ProjectName },
		target:   true,
	},
	{
		reported: "DATA_SOURCE_NAME",
		primary:  "TABLEAU_DATA_SOURCE_NAME",
		legacy:   "DATA_SOURCE_NAME",
		get:      func(c *Config) *string { return &c.DataSourceName },
		target:   true,
	},
}

// the api version is not one of the placeholder-checked settings
const apiVersionEnv = "TABLEAU_API_VERSION"

// overrideKeys are the variables reported when they are set, the password
// is left out on purpose.
var overrideKeys = []string{
	"TABLEAU_SERVER_URL",
	"TABLEAU_SITE_NAME",
	"TABLEAU_USERNAME",
	"TABLEAU_PROJECT_NAME",
	"TABLEAU_DATA_SOURCE_NAME",
}

// Defaults are the values used when neither the environment nor a config
// file provide one. The placeholders never pass validation.
func Defaults() Config {
	return Config{
		ServerUrl:      "https://prod-apnortheast-a.online.tableau.com",
		SiteName:       "your_site_name",
		Username:       "your_email@example.com",
		Password:       "your_password_or_token",
		ProjectName:    "Banking Insights Dashboard",
		DataSourceName: "merged_dataset",
		ApiVersion:     tableau.DefaultApiVersion,
	}
}

// LoadFile reads the optional json5 config file at `path` (and its .local
// variant) and fills whatever it leaves empty from Defaults.
func LoadFile(path string) (Config, error) {
	var base Config
	if path != "" {
		var err error
		base, err = configutil.ReadOptional[Config](path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	err := mergo.Merge(&base, Defaults())
	if err != nil {
		return Config{}, err
	}
	return base, nil
}

// lookupSet returns the value of `key` when it is set, empty or not, so
// that an explicitly emptied variable fails validation instead of falling
// back to a default.
func lookupSet(lookup LookupFunc, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	return lookup(key)
}

func lookupNonEmpty(lookup LookupFunc, key string) (string, bool) {
	if key == "" {
		return "", false
	}
	v, ok := lookup(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// ConfigurationError lists every setting that is missing or still holds a
// placeholder.
type ConfigurationError struct {
	Fields []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf(
		"missing or placeholder tableau configuration variables: [%s]. "+
			"set them in the environment or in the config file",
		strings.Join(e.Fields, ", "),
	)
}

func rejected(value string) bool {
	return value == "" ||
		strings.Contains(value, placeholderMarker) ||
		strings.Contains(value, exampleMarker)
}

// Resolve layers environment values from `lookup` over `base` and
// validates the result.
//
// Every setting is checked, the returned *ConfigurationError names all
// of the offending ones.
func Resolve(lookup LookupFunc, base Config) (Config, error) {
	return resolve(lookup, base, true)
}

// ResolveConnection is Resolve without requiring the project and data
// source names, for commands that only talk to the server.
func ResolveConnection(lookup LookupFunc, base Config) (Config, error) {
	return resolve(lookup, base, false)
}

func resolve(lookup LookupFunc, base Config, requireTarget bool) (Config, error) {
	cfg := base
	cfg.EnvOverrides = nil

	for _, f := range fields {
		if v, ok := lookupSet(lookup, f.primary); ok {
			*f.get(&cfg) = v
			continue
		}
		if v, ok := lookupSet(lookup, f.legacy); ok {
			*f.get(&cfg) = v
		}
	}
	if v, ok := lookupSet(lookup, apiVersionEnv); ok {
		cfg.ApiVersion = v
	}

	for _, key := range overrideKeys {
		if _, ok := lookupNonEmpty(lookup, key); ok {
			cfg.EnvOverrides = append(cfg.EnvOverrides, key)
		}
	}

	var missing []string
	for _, f := range fields {
		if f.target && !requireTarget {
			continue
		}
		if rejected(*f.get(&cfg)) {
			missing = append(missing, f.reported)
		}
	}
	if cfg.ApiVersion == "" {
		missing = append(missing, apiVersionEnv)
	}
	if len(missing) > 0 {
		return Config{}, &ConfigurationError{Fields: missing}
	}

	return cfg, nil
}

// Credentials returns what SignIn needs out of the config.
func (c Config) Credentials() tableau.Credentials {
	return tableau.Credentials{
		Username: c.Username,
		Password: c.Password,
		Site:     c.SiteName,
	}
}
