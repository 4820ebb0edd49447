package render

// palette maps the colour tokens used in the dataset table to hex colours.
var palette = map[string]string{
	"bg-blue-500":   "#3b82f6",
	"bg-green-500":  "#22c55e",
	"bg-purple-500": "#a855f7",
	"bg-orange-500": "#f97316",
	"bg-red-500":    "#ef4444",
	"bg-yellow-500": "#eab308",
}

const fallbackColor = "#6b7280"

// ColorHex resolves a colour token; unknown tokens fall back to grey.
func ColorHex(token string) string {
	if hex, ok := palette[token]; ok {
		return hex
	}
	return fallbackColor
}
