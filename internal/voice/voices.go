package voice

import (
	"sort"
	"strings"
)

// VoiceInfo describes one client-facing voice name.
type VoiceInfo struct {
	Name     string `json:"name"`
	Provider string `json:"provider_voice"`
	Language string `json:"language"`
	Gender   string `json:"gender"`
}

var voiceTable = map[string]VoiceInfo{
	"en-US-female": {Name: "en-US-female", Provider: "Cherry", Language: "en-US", Gender: "female"},
	"en-US-male":   {Name: "en-US-male", Provider: "Ethan", Language: "en-US", Gender: "male"},
	"en-US-child":  {Name: "en-US-child", Provider: "Chelsie", Language: "en-US", Gender: "female"},
	"zh-CN-female": {Name: "zh-CN-female", Provider: "Serena", Language: "zh-CN", Gender: "female"},
	"zh-CN-male":   {Name: "zh-CN-male", Provider: "Dylan", Language: "zh-CN", Gender: "male"},
}

// ProviderVoice maps a client voice name to the synthesis service's voice id.
// Unknown names are passed through unchanged.
func ProviderVoice(name string) string {
	name = strings.TrimSpace(name)
	if v, ok := voiceTable[name]; ok {
		return v.Provider
	}
	return name
}

// Voices lists the known client voice names in stable order.
func Voices() []VoiceInfo {
	out := make([]VoiceInfo, 0, len(voiceTable))
	for _, v := range voiceTable {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
