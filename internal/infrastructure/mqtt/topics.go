package mqtt

import "fmt"

// TopicPrefix is the root of every energylog topic.
const TopicPrefix = "energylog"

// Topics builds energylog topic names.
//
//	mqtt.Topics{}.State("solis", "inverter") // energylog/state/solis/inverter
type Topics struct{}

// State returns the retained state topic for a device.
func (Topics) State(source, device string) string {
	return fmt.Sprintf("%s/state/%s/%s", TopicPrefix, source, device)
}

// Status returns the online/offline topic for a program.
func (Topics) Status(program string) string {
	return fmt.Sprintf("%s/status/%s", TopicPrefix, program)
}
