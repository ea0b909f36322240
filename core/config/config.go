package config

import (
	_ "embed"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
	FilesDirName      = "files"
	PrivateKeyName    = "private_key"
	AppLogName        = "app.log"

	// DefaultPrompt is used when the configuration doesn't set one. \h is
	// replaced by the host and \u by the user.
	DefaultPrompt = `PS \h> `
)

type Configuration struct {
	configFs afero.Fs

	// Connection defaults for commands that don't name a computer or
	// credentials of their own.
	Host     string `json:"host" validate:"required"`
	Username string `json:"username"`
	Password string `json:"password"`

	Prompt string `json:"prompt"`

	SSHPort   int    `json:"ssh_port" validate:"gte=0,lte=65535"`
	SSHBanner string `json:"ssh_banner"`
	Users     []User `json:"users" validate:"unique=Username,dive"`

	Directory  Directory  `json:"directory"`
	Management Management `json:"management"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

// User is an account that may log in over SSH.
type User struct {
	Username  string   `json:"username" validate:"required"`
	Passwords []string `json:"passwords" validate:"unique"`
}

// Credentials protect a directory or a management host.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password"`
}

// Directory holds the objects served to the Active Directory commands.
type Directory struct {
	// Servers lists the names the directory answers to, the first one is
	// the default domain controller.
	Servers     []string          `json:"servers" validate:"required,min=1,dive,required"`
	BaseDN      string            `json:"base_dn" validate:"required"`
	Credentials *Credentials      `json:"credentials,omitempty"`
	Objects     []DirectoryObject `json:"objects" validate:"unique=DN,dive"`
}

type DirectoryObject struct {
	DN         string              `json:"dn" validate:"required"`
	Attributes map[string][]string `json:"attributes"`
}

// Management holds the WMI classes served per host.
type Management struct {
	Hosts []ManagementHost `json:"hosts" validate:"unique=Name,dive"`
}

type ManagementHost struct {
	Name        string                         `json:"name" validate:"required"`
	Aliases     []string                       `json:"aliases"`
	Credentials *Credentials                   `json:"credentials,omitempty"`
	Classes     map[string][]map[string]string `json:"classes"`
}

// Names returns every name the host answers to.
func (h *ManagementHost) Names() []string {
	return append([]string{h.Name}, h.Aliases...)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewMemMapFs()
	}
	return c.configFs
}

// FilesFs returns the filesystem commands read and write files in.
func (c *Configuration) FilesFs() (afero.Fs, error) {
	if err := c.fs().MkdirAll(FilesDirName, 0700); err != nil {
		return nil, err
	}
	return afero.NewBasePathFs(c.fs(), FilesDirName), nil
}

// PrivateKeyPem returns the bytes of the private key.
func (c *Configuration) PrivateKeyPem() ([]byte, error) {
	return afero.ReadFile(c.fs(), PrivateKeyName)
}

// OpenAppLog opens the application log in an append only state.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(AppLogName, os.O_RDONLY, 0600)
}

// GetPasswords returns allowable passwords for the given username.
func (c *Configuration) GetPasswords(username string) []string {
	var out []string
	for _, v := range c.Users {
		if v.Username == username {
			out = append(out, v.Passwords...)
		}
	}
	return out
}

// PromptFor expands the prompt template for a user.
func (c *Configuration) PromptFor(username string) string {
	prompt := c.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	prompt = strings.ReplaceAll(prompt, `\h`, c.Host)
	prompt = strings.ReplaceAll(prompt, `\u`, username)
	return prompt
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// Default returns the built-in configuration backed by an in-memory
// filesystem.
func Default() *Configuration {
	out := defaultConfig()
	out.configFs = afero.NewMemMapFs()
	return out
}
