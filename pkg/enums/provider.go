package enums

// Provider identifies the external streaming platform an event arrived from.
type Provider string

const (
	ProviderTwitch  Provider = "twitch"
	ProviderYouTube Provider = "youtube"
	ProviderTrovo   Provider = "trovo"
	ProviderKick    Provider = "kick"
	ProviderVKPlay  Provider = "vkplay"
	ProviderBoosty  Provider = "boosty"
)

func (p Provider) IsValid() bool {
	switch p {
	case ProviderTwitch, ProviderYouTube, ProviderTrovo, ProviderKick, ProviderVKPlay, ProviderBoosty:
		return true
	}
	return false
}

func (p Provider) String() string {
	return string(p)
}
