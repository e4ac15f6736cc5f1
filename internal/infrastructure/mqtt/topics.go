package mqtt

import "fmt"

// Topic prefixes for the vacuum logger.
const (
	// TopicPrefixGauge is the base for per-gauge topics.
	TopicPrefixGauge = "vacuum/gauge"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "vacuum/system"
)

// Topics provides builders for vacuum logger MQTT topics.
//
//	topic := mqtt.Topics{}.GaugeReading("01")
//	// Returns: "vacuum/gauge/01/reading"
type Topics struct{}

// GaugeReading returns the topic carrying the latest reading of a gauge.
//
// Example: vacuum/gauge/01/reading
func (Topics) GaugeReading(address string) string {
	return fmt.Sprintf("%s/%s/reading", TopicPrefixGauge, address)
}

// SystemStatus returns the logger's availability topic.
//
// Example: vacuum/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}
