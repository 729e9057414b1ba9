package mssql

import (
	"fmt"
	"time"

	"github.com/go-viper/mapstructure/v2"
)

// Params holds SQL Server-specific configuration.
// Parsed from adapter.Config.Params using mapstructure.
type Params struct {
	// TextSize is applied with SET TEXTSIZE on every new session (0 keeps the server default)
	TextSize int `mapstructure:"textsize"`

	// AppName is reported to the server as the client application name
	AppName string `mapstructure:"app_name"`

	// ConnTimeout is the dial timeout in seconds
	ConnTimeout int `mapstructure:"conn_timeout"`

	// Pool sizing for the server's *sql.DB
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`

	// UnicodeStrings selects N'...' string literals (default true)
	UnicodeStrings *bool `mapstructure:"unicode_strings"`

	// Timezone timestamps are rendered in: "utc" (default), "local" or an IANA name
	Timezone string `mapstructure:"timezone"`
}

// ParseParams decodes adapter params. Unknown keys are rejected.
func ParseParams(raw map[string]any) (*Params, error) {
	p := &Params{}
	if len(raw) == 0 {
		return p, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           p,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create params decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return nil, fmt.Errorf("invalid mssql params: %w", err)
	}
	if p.TextSize < 0 {
		return nil, fmt.Errorf("invalid mssql params: textsize must not be negative")
	}
	return p, nil
}

// Unicode reports whether string literals use the N'...' form.
func (p *Params) Unicode() bool {
	return p.UnicodeStrings == nil || *p.UnicodeStrings
}

// SessionInitSQL returns the batch run on every new session.
func (p *Params) SessionInitSQL() string {
	if p.TextSize == 0 {
		return ""
	}
	return fmt.Sprintf("SET TEXTSIZE %d", p.TextSize)
}
