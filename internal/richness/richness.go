// Package richness holds the types shared by every stage of the device
// richness pipeline: domains, cluster profiles, assignments, composite
// records and the warning/error taxonomy.
package richness

import "fmt"

// Domain identifies one behavioural data source
type Domain string

const (
	DomainCafe       Domain = "cafe"
	DomainPing       Domain = "ping"
	DomainRestaurant Domain = "restaurant"
)

// Domains returns all domains in canonical output order
func Domains() []Domain {
	return []Domain{DomainCafe, DomainPing, DomainRestaurant}
}

// ParseDomain validates a domain name
func ParseDomain(s string) (Domain, error) {
	for _, d := range Domains() {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("알 수 없는 도메인: %q (cafe, ping, restaurant 중 하나)", s)
}

// ClusterColumn is the output column name carrying this domain's cluster id
func (d Domain) ClusterColumn() string {
	return string(d) + "_cluster"
}

// ScoreColumn is the output column name carrying this domain's richness score
func (d Domain) ScoreColumn() string {
	return string(d) + "_richness_score"
}

// ClusterProfile is one cluster's aggregate feature values.
type ClusterProfile struct {
	ClusterID int
	Features  map[string]float64
}

// ProfileTable is a domain's set of cluster profiles in source order.
// Columns lists feature names in source order.
type ProfileTable struct {
	Columns  []string
	Clusters []ClusterProfile
}

// HasColumn reports whether the feature exists in the table
func (t *ProfileTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// FeatureWeight is one signed weight in a domain's linear combination.
type FeatureWeight struct {
	Feature string  `yaml:"feature" json:"feature" validate:"required"`
	Weight  float64 `yaml:"weight" json:"weight"`
}

// Assignment maps a device to its cluster in one domain.
type Assignment struct {
	DeviceID  string
	ClusterID int
}

// Record is the per-device composite row. Nil scores mean the device's
// cluster did not resolve against that domain's score table.
type Record struct {
	DeviceID          string   `json:"device_aid"`
	CafeCluster       int      `json:"cafe_cluster"`
	PingCluster       int      `json:"ping_cluster"`
	RestaurantCluster int      `json:"restaurant_cluster"`
	CafeScore         *float64 `json:"cafe_richness_score"`
	PingScore         *float64 `json:"ping_richness_score"`
	RestaurantScore   *float64 `json:"restaurant_richness_score"`
	Overall           float64  `json:"OverallRichnessScore"`
}

// Cluster returns the record's cluster id for a domain
func (r *Record) Cluster(d Domain) int {
	switch d {
	case DomainCafe:
		return r.CafeCluster
	case DomainPing:
		return r.PingCluster
	default:
		return r.RestaurantCluster
	}
}

// Score returns the record's nullable score for a domain
func (r *Record) Score(d Domain) *float64 {
	switch d {
	case DomainCafe:
		return r.CafeScore
	case DomainPing:
		return r.PingScore
	default:
		return r.RestaurantScore
	}
}

// SetScore sets the nullable score for a domain
func (r *Record) SetScore(d Domain, v *float64) {
	switch d {
	case DomainCafe:
		r.CafeScore = v
	case DomainPing:
		r.PingScore = v
	default:
		r.RestaurantScore = v
	}
}

// OverallColumn is the output column name of the final weighted score.
const OverallColumn = "OverallRichnessScore"

// DeviceColumn is the canonical identifier column name.
const DeviceColumn = "device_aid"

// ArtifactColumns is the output artifact header. Downstream viewers depend
// on names and order.
func ArtifactColumns() []string {
	cols := []string{DeviceColumn}
	for _, d := range Domains() {
		cols = append(cols, d.ClusterColumn())
	}
	for _, d := range Domains() {
		cols = append(cols, d.ScoreColumn())
	}
	return append(cols, OverallColumn)
}

// Float returns a pointer to v
func Float(v float64) *float64 {
	return &v
}
