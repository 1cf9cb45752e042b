package config

import "strings"

// ContractSet pass contract and launch pad addresses of one environment
type ContractSet struct {
	SBT        string           `yaml:"sbt" json:"sbt"`
	LaunchPad  string           `yaml:"launch_pad" json:"launch_pad"`   // default launch pad on every source chain
	LaunchPads map[int64]string `yaml:"launch_pads" json:"launch_pads"` // chain id -> launch pad override
}

// ContractsConfig contract addresses per environment
type ContractsConfig struct {
	Development ContractSet `yaml:"development"`
	Production  ContractSet `yaml:"production"`
	Test        ContractSet `yaml:"test"`
}

// ForEnvironment returns the contract set of env
func (c ContractsConfig) ForEnvironment(env Environment) ContractSet {
	switch env {
	case EnvProduction:
		return c.Production
	case EnvTest:
		return c.Test
	default:
		return c.Development
	}
}

func (c *ContractsConfig) set(env Environment, set ContractSet) {
	switch env {
	case EnvProduction:
		c.Production = set
	case EnvTest:
		c.Test = set
	default:
		c.Development = set
	}
}

// LaunchPadFor launch pad address used when sending from chainID
func (s ContractSet) LaunchPadFor(chainID int64) string {
	if addr, ok := s.LaunchPads[chainID]; ok && addr != "" {
		return addr
	}
	return s.LaunchPad
}

// ExternalURLs links shown in navigation and used to build invite links
type ExternalURLs struct {
	Homepage   string `yaml:"homepage" json:"homepage"`
	Bridge     string `yaml:"bridge" json:"bridge"`
	Docs       string `yaml:"docs" json:"docs"`
	Explorer   string `yaml:"explorer" json:"explorer"`
	VizingScan string `yaml:"vizing_scan" json:"vizingScan"`
	Github     string `yaml:"github" json:"github"`
	Blog       string `yaml:"blog" json:"blog"`
	BrandKit   string `yaml:"brand_kit" json:"brandKit"`
	Twitter    string `yaml:"twitter" json:"twitter"`
	Discord    string `yaml:"discord" json:"discord"`
}

// ExternalURLsConfig external links per environment
type ExternalURLsConfig struct {
	Development ExternalURLs `yaml:"development"`
	Production  ExternalURLs `yaml:"production"`
	Test        ExternalURLs `yaml:"test"`
}

var sharedURLs = ExternalURLs{
	Docs:     "https://docs.vizing.com",
	Github:   "https://github.com/vizing-protocol",
	Blog:     "https://medium.com/@vizing",
	BrandKit: "https://vizing.com/brand-kit",
	Twitter:  "https://twitter.com/Vizing_L2",
	Discord:  "https://discord.gg/vizing",
}

var defaultExternalURLs = map[Environment]ExternalURLs{
	EnvDevelopment: withShared(ExternalURLs{
		Homepage:   "https://sepolia.vizing.com",
		Bridge:     "https://sepolia-bridge.vizing.com",
		Explorer:   "https://explorer-sepolia.vizing.com",
		VizingScan: "https://sepolia-scan.vizing.com",
	}),
	EnvTest: withShared(ExternalURLs{
		Homepage:   "https://sepolia.vizing.com",
		Bridge:     "https://sepolia-bridge.vizing.com",
		Explorer:   "https://explorer-sepolia.vizing.com",
		VizingScan: "https://sepolia-scan.vizing.com",
	}),
	EnvProduction: withShared(ExternalURLs{
		Homepage:   "https://www.vizing.com",
		Bridge:     "https://bridge.vizing.com",
		Explorer:   "https://explorer.vizing.com",
		VizingScan: "https://scan.vizing.com",
	}),
}

func withShared(u ExternalURLs) ExternalURLs {
	u.Docs = sharedURLs.Docs
	u.Github = sharedURLs.Github
	u.Blog = sharedURLs.Blog
	u.BrandKit = sharedURLs.BrandKit
	u.Twitter = sharedURLs.Twitter
	u.Discord = sharedURLs.Discord
	return u
}

// ForEnvironment returns the configured links of env, filling unset fields from defaults
func (c ExternalURLsConfig) ForEnvironment(env Environment) ExternalURLs {
	var u ExternalURLs
	switch env {
	case EnvProduction:
		u = c.Production
	case EnvTest:
		u = c.Test
	default:
		u = c.Development
	}
	def := defaultExternalURLs[env]
	fill := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
		*dst = strings.TrimRight(*dst, "/")
	}
	fill(&u.Homepage, def.Homepage)
	fill(&u.Bridge, def.Bridge)
	fill(&u.Docs, def.Docs)
	fill(&u.Explorer, def.Explorer)
	fill(&u.VizingScan, def.VizingScan)
	fill(&u.Github, def.Github)
	fill(&u.Blog, def.Blog)
	fill(&u.BrandKit, def.BrandKit)
	fill(&u.Twitter, def.Twitter)
	fill(&u.Discord, def.Discord)
	return u
}
