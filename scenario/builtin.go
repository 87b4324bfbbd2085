package scenario

// Builtin returns the demo scenario set used when no scenario file is
// configured. District PSI values follow the original haze presentation
// scenarios.
func Builtin() map[string]Def {
	return map[string]Def{
		"low_haze": {
			Name:        "low_haze",
			Description: "Low haze detected - early warning",
			Districts: []DistrictDef{
				{District: "central", PSI: 65, WindSpeed: 5.4, WindDirection: "NE"},
				{District: "east", PSI: 60, WindSpeed: 4.8, WindDirection: "NE"},
				{District: "north", PSI: 55, WindSpeed: 5.1, WindDirection: "NE"},
				{District: "south", PSI: 62, WindSpeed: 4.2, WindDirection: "NE"},
				{District: "west", PSI: 68, WindSpeed: 4.9, WindDirection: "NE"},
			},
			Forecasts: []ForecastDef{
				{District: "west", PSIPred: 85, Confidence: 0.8, HorizonMinutes: 90},
			},
		},
		"moderate_haze": {
			Name:        "moderate_haze",
			Description: "Moderate haze event - protocol activated",
			Districts: []DistrictDef{
				{District: "central", PSI: 125, WindSpeed: 6.1, WindDirection: "SW"},
				{District: "east", PSI: 118, WindSpeed: 5.8, WindDirection: "SW"},
				{District: "north", PSI: 95, WindSpeed: 6.4, WindDirection: "SW"},
				{District: "south", PSI: 102, WindSpeed: 5.5, WindDirection: "SW"},
				{District: "west", PSI: 130, WindSpeed: 6.0, WindDirection: "SW"},
			},
		},
		"severe_haze": {
			Name:           "severe_haze",
			Description:    "Severe haze crisis - full emergency response",
			Autonomous:     true,
			RecommendedQty: "5000",
			Districts: []DistrictDef{
				{District: "central", PSI: 215, WindSpeed: 7.8, WindDirection: "SW", SpikeFlag: true},
				{District: "east", PSI: 198, WindSpeed: 7.2, WindDirection: "SW"},
				{District: "north", PSI: 185, WindSpeed: 7.5, WindDirection: "SW"},
				{District: "south", PSI: 205, WindSpeed: 7.1, WindDirection: "SW"},
				{District: "west", PSI: 225, WindSpeed: 8.0, WindDirection: "SW", SpikeFlag: true},
			},
			Forecasts: []ForecastDef{
				{District: "west", PSIPred: 280, Confidence: 0.85, HorizonMinutes: 60},
			},
		},
	}
}
