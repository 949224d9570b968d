package domain

// SchoolEvents holds the two authored event lists of a school.
type SchoolEvents struct {
	Start   []Event `json:"start"`
	Special []Event `json:"special"`
}

// SchoolData is one school with its events and derived counts.
// StartCount/SpecialCount are computed during aggregation, never authored.
type SchoolData struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Events       SchoolEvents `json:"events"`
	StartCount   int          `json:"start_count"`
	SpecialCount int          `json:"special_count"`
}

// EventCount returns the school's total event count.
func (s *SchoolData) EventCount() int {
	return s.StartCount + s.SpecialCount
}

// CityData is one city with its schools. Total is the sum of all contained
// schools' start and special counts.
type CityData struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Schools []SchoolData `json:"schools"`
	Total   int          `json:"total"`
}

// ProvinceData is one province with its cities. Total is the sum of child
// city totals. Cities with zero events never appear here.
type ProvinceData struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Cities []CityData `json:"cities"`
	Total  int        `json:"total"`
}

// ProvinceTree is the rolled-up province hierarchy.
type ProvinceTree struct {
	Total     int            `json:"total"`
	Provinces []ProvinceData `json:"provinces"`
}

// Corpus is the full aggregated dataset: the province tree plus the flat
// exam, random, and school event lists. Total covers all four.
type Corpus struct {
	Provinces    ProvinceTree `json:"provinces"`
	ExamEvents   []Event      `json:"exam_events"`
	RandomEvents []Event      `json:"random_events"`
	SchoolEvents []Event      `json:"school_events"`
	Total        int          `json:"total"`
}

// AllEvents returns the union of every event in the corpus, school events
// first, matching the order the search page presented them in.
func (c *Corpus) AllEvents() []Event {
	all := make([]Event, 0, len(c.SchoolEvents)+len(c.ExamEvents)+len(c.RandomEvents))
	all = append(all, c.SchoolEvents...)
	all = append(all, c.ExamEvents...)
	all = append(all, c.RandomEvents...)
	return all
}

// ProvinceCityMap is the root resource driving aggregation: province id to
// display name plus the declared cities of that province.
type ProvinceCityMap map[string]ProvinceInfo

// ProvinceInfo is one entry of the province/city map.
type ProvinceInfo struct {
	Name   string            `json:"name"`
	Cities map[string]string `json:"cities"`
}
