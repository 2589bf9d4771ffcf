package bot

import (
	_ "embed"
	"errors"
	"fmt"
	"regexp"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-yaml"
)

//go:embed commands.yaml
var defaultCatalog []byte

// Discord limits
const (
	maxDescription = 100
	maxChoices     = 25
	maxOptions     = 25
)

var (
	// ErrBadCatalog is returned for a command catalog Discord would reject
	ErrBadCatalog = errors.New("invalid command catalog")

	namePattern = regexp.MustCompile(`^[a-z0-9_-]{1,32}$`)
)

// Catalog lists the slash commands and the tools behind them.
type Catalog struct {
	Commands []Command `yaml:"commands"`
}

// Command is one slash command.
type Command struct {
	Name          string            `yaml:"name"`
	Tool          string            `yaml:"tool"`
	Description   string            `yaml:"description"`
	Localizations map[string]string `yaml:"localizations"`
	Options       []Option          `yaml:"options"`
}

// Option is one command argument, passed to the tool as the parameter of the
// same name.
type Option struct {
	Name          string            `yaml:"name"`
	Type          string            `yaml:"type"` // string or number
	Description   string            `yaml:"description"`
	Required      bool              `yaml:"required"`
	Choices       []string          `yaml:"choices"`
	Localizations map[string]string `yaml:"localizations"`
}

// LoadCatalog parses the built-in command catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog parses and validates a YAML command catalog.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog against Discord's command rules.
func (c *Catalog) Validate() error {
	if len(c.Commands) == 0 {
		return fmt.Errorf("%w: no commands", ErrBadCatalog)
	}
	seen := make(map[string]bool, len(c.Commands))
	for _, cmd := range c.Commands {
		if !namePattern.MatchString(cmd.Name) {
			return fmt.Errorf("%w: bad command name %q", ErrBadCatalog, cmd.Name)
		}
		if seen[cmd.Name] {
			return fmt.Errorf("%w: duplicate command %q", ErrBadCatalog, cmd.Name)
		}
		seen[cmd.Name] = true
		if cmd.Tool == "" {
			return fmt.Errorf("%w: command %q has no tool", ErrBadCatalog, cmd.Name)
		}
		if err := checkDescription(cmd.Name, cmd.Description, cmd.Localizations); err != nil {
			return err
		}
		if len(cmd.Options) > maxOptions {
			return fmt.Errorf("%w: command %q has %d options", ErrBadCatalog, cmd.Name, len(cmd.Options))
		}
		if err := checkOptions(cmd); err != nil {
			return err
		}
	}
	return nil
}

func checkOptions(cmd Command) error {
	optional := false
	names := make(map[string]bool, len(cmd.Options))
	for _, opt := range cmd.Options {
		where := cmd.Name + " " + opt.Name
		if !namePattern.MatchString(opt.Name) || names[opt.Name] {
			return fmt.Errorf("%w: bad or duplicate option %q", ErrBadCatalog, where)
		}
		names[opt.Name] = true
		if opt.Type != "string" && opt.Type != "number" {
			return fmt.Errorf("%w: option %q has type %q", ErrBadCatalog, where, opt.Type)
		}
		if opt.Required && optional {
			return fmt.Errorf("%w: required option %q follows an optional one", ErrBadCatalog, where)
		}
		optional = optional || !opt.Required
		if len(opt.Choices) > maxChoices {
			return fmt.Errorf("%w: option %q has %d choices", ErrBadCatalog, where, len(opt.Choices))
		}
		if err := checkDescription(where, opt.Description, opt.Localizations); err != nil {
			return err
		}
	}
	return nil
}

func checkDescription(where, desc string, localized map[string]string) error {
	texts := []string{desc}
	for _, text := range localized {
		texts = append(texts, text)
	}
	for _, text := range texts {
		if n := len([]rune(text)); n == 0 || n > maxDescription {
			return fmt.Errorf("%w: %q needs a description of 1-%d characters, got %d", ErrBadCatalog, where, maxDescription, n)
		}
	}
	return nil
}

// Lookup finds a command by name.
func (c *Catalog) Lookup(name string) (*Command, bool) {
	for i := range c.Commands {
		if c.Commands[i].Name == name {
			return &c.Commands[i], true
		}
	}
	return nil, false
}

// CheckTools reports the first command whose tool does not exist.
func (c *Catalog) CheckTools(exists func(toolID string) bool) error {
	for _, cmd := range c.Commands {
		if !exists(cmd.Tool) {
			return fmt.Errorf("%w: command %q runs unknown tool %q", ErrBadCatalog, cmd.Name, cmd.Tool)
		}
	}
	return nil
}

// ApplicationCommands converts the catalog into Discord's registration
// payload.
func (c *Catalog) ApplicationCommands() []*discordgo.ApplicationCommand {
	out := make([]*discordgo.ApplicationCommand, len(c.Commands))
	for i, cmd := range c.Commands {
		desc := locales(cmd.Localizations)
		ac := &discordgo.ApplicationCommand{
			Name:        cmd.Name,
			Description: cmd.Description,
			Options:     make([]*discordgo.ApplicationCommandOption, len(cmd.Options)),
		}
		if desc != nil {
			ac.DescriptionLocalizations = &desc
		}
		for j, opt := range cmd.Options {
			ac.Options[j] = opt.applicationOption()
		}
		out[i] = ac
	}
	return out
}

func (o Option) applicationOption() *discordgo.ApplicationCommandOption {
	opt := &discordgo.ApplicationCommandOption{
		Type:                     discordgo.ApplicationCommandOptionString,
		Name:                     o.Name,
		Description:              o.Description,
		DescriptionLocalizations: locales(o.Localizations),
		Required:                 o.Required,
	}
	if o.Type == "number" {
		opt.Type = discordgo.ApplicationCommandOptionNumber
	}
	for _, choice := range o.Choices {
		opt.Choices = append(opt.Choices, &discordgo.ApplicationCommandOptionChoice{Name: choice, Value: choice})
	}
	return opt
}

func locales(m map[string]string) map[discordgo.Locale]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[discordgo.Locale]string, len(m))
	for k, v := range m {
		out[discordgo.Locale(k)] = v
	}
	return out
}

// Params converts interaction options into tool parameters. Numbers arrive
// as float64 and strings as string.
func Params(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]interface{} {
	params := make(map[string]interface{}, len(options))
	for _, o := range options {
		params[o.Name] = o.Value
	}
	return params
}
