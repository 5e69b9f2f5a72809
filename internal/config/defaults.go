package config

import "github.com/n0roo/richness-kit/internal/richness"

// Default returns the reference configuration: the weight tables used for
// the original cafe, ping and restaurant cluster runs, the shipped cafe and
// restaurant profile tables and the reference file layout under data/.
func Default() *Config {
	return &Config{
		Version: ConfigVersion,
		Domains: DomainSet{
			Cafe: DomainConfig{
				Profile: ProfileConfig{
					Path:      "builtin:cafe",
					Delimiter: ",",
					Decimal:   ".",
					Layout:    "rows",
				},
				Assignments: AssignmentConfig{
					Path:      "data/coffee_device_clusters.csv",
					Delimiter: ";",
					IDColumn:  richness.DeviceColumn,
				},
				Scoring: ScoringConfig{
					ScoreColumn: "CafeRichnessScore",
					Transforms: []string{
						"num_unique_cafes_visited",
						"avg_visits_per_week",
						"avg_visit_duration_minutes",
						"total_time_spent_hours",
					},
					Weights: []richness.FeatureWeight{
						{Feature: "num_unique_cafes_visited", Weight: 3},
						{Feature: "avg_visits_per_week", Weight: 4},
						{Feature: "TimeSlot_Afternoon_rate", Weight: 2},
						{Feature: "TimeSlot_Evening_rate", Weight: 3},
						{Feature: "TimeSlot_Morning_rate", Weight: 1},
						{Feature: "TimeSlot_Night_rate", Weight: 3},
						{Feature: "DayOfWeek_Friday_rate", Weight: 2},
						{Feature: "DayOfWeek_Monday_rate", Weight: 1},
						{Feature: "DayOfWeek_Saturday_rate", Weight: 3},
						{Feature: "DayOfWeek_Sunday_rate", Weight: 3},
						{Feature: "DayOfWeek_Thursday_rate", Weight: 1},
						{Feature: "DayOfWeek_Tuesday_rate", Weight: 1},
						{Feature: "DayOfWeek_Wednesday_rate", Weight: 1},
						{Feature: "avg_visit_duration_minutes", Weight: 3},
						{Feature: "total_time_spent_hours", Weight: 4},
					},
				},
			},
			Ping: DomainConfig{
				Profile: ProfileConfig{
					Path:      "data/cluster_profiles_numerical_median.csv",
					Delimiter: ",",
					Decimal:   ".",
					Layout:    "columns",
				},
				Assignments: AssignmentConfig{
					Path:              "data/polygons_clusters.csv",
					Delimiter:         ",",
					IDFromFirstColumn: true,
				},
				Scoring: ScoringConfig{
					ScoreColumn: "PingRichnessScore",
					Weights: []richness.FeatureWeight{
						{Feature: "total_pings", Weight: 2},
						{Feature: "unique_days_active", Weight: 2},
						{Feature: "activity_span_days", Weight: 1},
						{Feature: "ratio_in_luxury_houses", Weight: 5},
						{Feature: "ratio_in_hotels", Weight: 2},
						{Feature: "ratio_in_turkey_sites", Weight: 5},
						{Feature: "ratio_in_poi", Weight: 0.5},
						{Feature: "ratio_in_p_schools", Weight: 0},
						{Feature: "ratio_gece_pings", Weight: 2},
						{Feature: "ratio_aksam_pings", Weight: 2},
						{Feature: "ratio_sabah_pings", Weight: 1},
						{Feature: "ratio_ogle_pings", Weight: 1},
						{Feature: "num_distinct_polygon_types_visited", Weight: 1},
						{Feature: "num_distinct_poi", Weight: 1},
						{Feature: "dominant_gece_location_ping_count", Weight: 1},
						{Feature: "ratio_dominant_gece_loc_pings_to_total_gece", Weight: 1},
					},
				},
			},
			Restaurant: DomainConfig{
				Profile: ProfileConfig{
					Path:      "builtin:restaurant",
					Delimiter: ",",
					Decimal:   ".",
					Layout:    "rows",
				},
				Assignments: AssignmentConfig{
					Path:      "data/restaurant_clusters.csv",
					Delimiter: ";",
					IDColumn:  richness.DeviceColumn,
				},
				Scoring: ScoringConfig{
					ScoreColumn:  "RichnessScore",
					Transforms:   []string{"total_visits"},
					KeepOriginal: true,
					Weights: []richness.FeatureWeight{
						{Feature: "avg_SatisHacmi", Weight: 4},
						{Feature: "avg_OrtalamaHarcamaTutari", Weight: 5},
						// 값이 클수록 부유도가 낮음
						{Feature: "avg_PopulationInverseScore", Weight: -3},
						{Feature: "avg_QualityScore", Weight: 4},
						{Feature: "total_visits", Weight: 3},
						{Feature: "VenueType_D_rate", Weight: 1},
						{Feature: "VenueType_H_rate", Weight: 3},
						{Feature: "VenueType_R_rate", Weight: 5},
						{Feature: "TimeSlot_Afternoon_rate", Weight: 1},
						{Feature: "TimeSlot_Evening_rate", Weight: 2},
						{Feature: "TimeSlot_Morning_rate", Weight: 1},
						{Feature: "TimeSlot_Night_rate", Weight: 2},
					},
				},
			},
		},
		Overall: OverallConfig{
			Weights:       OverallWeights{Cafe: 2, Ping: 1, Restaurant: 3},
			MissingPolicy: "zero",
		},
		Duplicates: "last",
		Workers:    1,
		Output: OutputConfig{
			Path: "data/overall_device_richness_scores.csv",
		},
		Viewer: ViewerConfig{
			Personas: "personas.yaml",
			MaxRows:  1000,
			Addr:     ":8080",
		},
		Log: LogConfig{
			Mode: "dev",
		},
	}
}
