package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CardConfig holds the wording of the success reply card.
type CardConfig struct {
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Color        string `yaml:"color"`
	SourceLabel  string `yaml:"source_label"`
	HostedLabel  string `yaml:"hosted_label"`
	LinkText     string `yaml:"link_text"`
	Footer       string `yaml:"footer"`
	ThumbnailURL string `yaml:"thumbnail_url"`
}

func DefaultCardConfig() CardConfig {
	return CardConfig{
		Title:       "Slideshare File Unlocked",
		Description: "Your file link is here.",
		Color:       "#86ff00",
		SourceLabel: "Question",
		HostedLabel: "Answer",
		LinkText:    "Click here",
	}
}

// LoadCardConfig reads a YAML card file over the defaults. An empty path
// returns the defaults unchanged.
func LoadCardConfig(path string) (CardConfig, error) {
	card := DefaultCardConfig()
	if path == "" {
		return card, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return card, fmt.Errorf("read card config: %w", err)
	}
	if err := yaml.Unmarshal(data, &card); err != nil {
		return card, fmt.Errorf("parse card config %s: %w", path, err)
	}
	return card, nil
}
