package accounts

// accountsFile represents the top-level structure of the accounts YAML file.
type accountsFile struct {
	Accounts []AccountProps `yaml:"accounts"`
}

// AccountProps contains the raw per-account properties before validation.
type AccountProps struct {
	Name                 string   `yaml:"name"`
	Endpoint             string   `yaml:"endpoint"`
	Username             string   `yaml:"username,omitempty"`
	Password             string   `yaml:"password,omitempty"`
	UsernamePasswordFile string   `yaml:"usernamePasswordFile,omitempty"`
	SupportedTypes       []string `yaml:"supportedTypes,omitempty"`
}
