package airquality

// Level is the severity tier of an AQI value on the US EPA scale.
type Level string

// Severity tiers in ascending order.
const (
	LevelGood               Level = "Good"
	LevelModerate           Level = "Moderate"
	LevelUnhealthySensitive Level = "Unhealthy for Sensitive Groups"
	LevelUnhealthy          Level = "Unhealthy"
	LevelVeryUnhealthy      Level = "Very Unhealthy"
	LevelHazardous          Level = "Hazardous"
)

// Rank returns the ordinal position of the level, Good being 0.
func (l Level) Rank() int {
	switch l {
	case LevelGood:
		return 0
	case LevelModerate:
		return 1
	case LevelUnhealthySensitive:
		return 2
	case LevelUnhealthy:
		return 3
	case LevelVeryUnhealthy:
		return 4
	case LevelHazardous:
		return 5
	}
	return -1
}

// Category carries the severity tier, health guidance, and presentation
// colors for an AQI value.
type Category struct {
	Level     Level  `json:"level"`
	Health    string `json:"health"`
	Color     string `json:"color"`
	TextColor string `json:"textColor"`
}

// Categorize maps a US EPA AQI value to its category. Total and pure:
// negative input falls into Good, anything above 300 is Hazardous.
func Categorize(aqiUS int) Category {
	switch {
	case aqiUS <= 50:
		return Category{
			Level:     LevelGood,
			Health:    "Air quality is satisfactory, and air pollution poses little or no risk",
			Color:     "#00e400",
			TextColor: "#ffffff",
		}
	case aqiUS <= 100:
		return Category{
			Level:     LevelModerate,
			Health:    "Air quality is acceptable. However, there may be a risk for some people, particularly those who are unusually sensitive to air pollution",
			Color:     "#ffff00",
			TextColor: "#000000",
		}
	case aqiUS <= 150:
		return Category{
			Level:     LevelUnhealthySensitive,
			Health:    "Members of sensitive groups may experience health effects. The general public is less likely to be affected",
			Color:     "#ff7e00",
			TextColor: "#000000",
		}
	case aqiUS <= 200:
		return Category{
			Level:     LevelUnhealthy,
			Health:    "Some members of the general public may experience health effects; members of sensitive groups may experience more serious health effects",
			Color:     "#ff0000",
			TextColor: "#ffffff",
		}
	case aqiUS <= 300:
		return Category{
			Level:     LevelVeryUnhealthy,
			Health:    "Health alert: The risk of health effects is increased for everyone",
			Color:     "#8f3f97",
			TextColor: "#ffffff",
		}
	default:
		return Category{
			Level:     LevelHazardous,
			Health:    "Health warning of emergency conditions: everyone is more likely to be affected",
			Color:     "#7e0023",
			TextColor: "#ffffff",
		}
	}
}
