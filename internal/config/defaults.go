package config

// Default configuration values.
const (
	DefaultServer     = "default"
	DefaultLogLevel   = "info"
	DefaultOutput     = "table"
	DefaultServerType = "mssql"
	DefaultPort       = 1433
)

// ApplyServerDefaults fills unset fields of a server configuration.
func ApplyServerDefaults(s *ServerConfig) {
	if s == nil {
		return
	}
	if s.Type == "" {
		s.Type = DefaultServerType
	}
	if s.Port == 0 && s.Instance == "" {
		s.Port = DefaultPort
	}
}
