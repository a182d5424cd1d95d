package models

// MachineState is the read model of a single machine.
type MachineState struct {
	Name          string `json:"name"`
	Operational   bool   `json:"operational"`
	Fault         string `json:"fault,omitempty"` // set iff Operational is false
	GoodParts     int    `json:"good_parts"`
	ScrapParts    int    `json:"scrap_parts"`
	StatusHistory []int  `json:"status_history"` // 1 = operational that tick, 0 = broken
	ScrapHistory  []int  `json:"scrap_history"`  // cumulative ScrapParts per tick
}

// FleetSnapshot is a point-in-time copy of the whole fleet.
type FleetSnapshot struct {
	Tick            int            `json:"tick"`
	TotalGoodParts  int            `json:"total_good_parts"`
	TotalScrapParts int            `json:"total_scrap_parts"`
	Machines        []MachineState `json:"machines"`
}

// Broken returns the names of machines that are currently not operational.
func (s FleetSnapshot) Broken() []string {
	var out []string
	for _, m := range s.Machines {
		if !m.Operational {
			out = append(out, m.Name)
		}
	}
	return out
}
