package label

import "fmt"

// Built-in schema names
const (
	WarEmotions    = "war"
	SimpleEmotions = "simple"
)

// The war taxonomy keeps the historical "criticicism" spelling; score files
// already on disk depend on it for column order.
var warEmotions = []string{
	"criticicism",
	"devotion",
	"euphoria",
	"integration",
	"joy",
	"praise",
	"propaganda",
	"resistance",
	"sacrifice",
	"support",
}

var simpleEmotions = []string{
	"anger",
	"brave",
	"fear",
	"greed",
	"help",
	"peace",
	"pride",
	"sadness",
	"stress",
	"trust",
}

// ByName returns a built-in schema
func ByName(name string) (Schema, error) {
	switch name {
	case WarEmotions:
		return New(WarEmotions, warEmotions)
	case SimpleEmotions:
		return New(SimpleEmotions, simpleEmotions)
	default:
		return Schema{}, fmt.Errorf("unknown label set %q", name)
	}
}
