package records

import (
	"time"

	"github.com/TomasB/geolookup/internal/raw"
)

// Anonymizer describes the anonymizing network an IP address belongs to. Insights only.
type Anonymizer struct {
	// Confidence (1-99) that the network is an actively used VPN service.
	Confidence         *int
	IsAnonymous        bool
	IsAnonymousVPN     bool
	IsHostingProvider  bool
	IsPublicProxy      bool
	IsResidentialProxy bool
	IsTorExitNode      bool
	// NetworkLastSeen is the last day the network was sighted, at UTC midnight.
	NetworkLastSeen *time.Time
	// ProviderName is the VPN provider, e.g. "NordVPN".
	ProviderName *string
}

// NewAnonymizer fails only when network_last_seen is present but not an ISO date.
func NewAnonymizer(m map[string]any) (Anonymizer, error) {
	lastSeen, err := raw.Date(m, "network_last_seen")
	if err != nil {
		return Anonymizer{}, err
	}
	return Anonymizer{
		Confidence:         raw.Int(m, "confidence"),
		IsAnonymous:        raw.Bool(m, "is_anonymous"),
		IsAnonymousVPN:     raw.Bool(m, "is_anonymous_vpn"),
		IsHostingProvider:  raw.Bool(m, "is_hosting_provider"),
		IsPublicProxy:      raw.Bool(m, "is_public_proxy"),
		IsResidentialProxy: raw.Bool(m, "is_residential_proxy"),
		IsTorExitNode:      raw.Bool(m, "is_tor_exit_node"),
		NetworkLastSeen:    lastSeen,
		ProviderName:       raw.String(m, "provider_name"),
	}, nil
}

func (a Anonymizer) ToMap() map[string]any {
	d := raw.Dict{}
	d.Int("confidence", a.Confidence)
	d.Bool("is_anonymous", a.IsAnonymous)
	d.Bool("is_anonymous_vpn", a.IsAnonymousVPN)
	d.Bool("is_hosting_provider", a.IsHostingProvider)
	d.Bool("is_public_proxy", a.IsPublicProxy)
	d.Bool("is_residential_proxy", a.IsResidentialProxy)
	d.Bool("is_tor_exit_node", a.IsTorExitNode)
	d.Date("network_last_seen", a.NetworkLastSeen)
	d.String("provider_name", a.ProviderName)
	return d
}

func (a Anonymizer) Equal(o Anonymizer) bool { return raw.Equal(a.ToMap(), o.ToMap()) }
