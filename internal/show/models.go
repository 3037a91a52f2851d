package show

// Checklist categories
const (
	CategoryPreproduction = "preproduction"
	CategoryAufbau        = "aufbau"
	CategoryShow          = "show"
)

// ValidCategory reports whether name is a known checklist category
func ValidCategory(name string) bool {
	switch name {
	case CategoryPreproduction, CategoryAufbau, CategoryShow:
		return true
	}
	return false
}

// Default console-integration identifiers
const (
	DefaultMA3SequenceID = 101
	DefaultEosMacroID    = 101
	DefaultEosCuelistID  = 1
)

// ImportedSongIDBase offsets the IDs of songs committed from a script
// import so they never collide with sequentially issued song IDs.
const ImportedSongIDBase = 1_000_000

// Show is the authoritative record for one production. Songs double as the
// cue list: every song is exported as exactly one lighting cue.
type Show struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Artist    string `json:"artist"`
	Date      string `json:"date"`
	VenueType string `json:"venue_type"`
	Genre     string `json:"genre"`
	RigType   string `json:"rig_type"`

	Regie             string `json:"regie,omitempty"`
	Veranstalter      string `json:"veranstalter,omitempty"`
	VTFirma           string `json:"vt_firma,omitempty"`
	TechnischerLeiter string `json:"technischer_leiter,omitempty"`
	Notes             string `json:"notes,omitempty"`

	MA3SequenceID int `json:"ma3_sequence_id"`
	EosMacroID    int `json:"eos_macro_id"`
	EosCuelistID  int `json:"eos_cuelist_id"`

	RigSetup   *RigSetup               `json:"rig_setup,omitempty"`
	Songs      []*Song                 `json:"songs"`
	Checklists map[string][]*CheckItem `json:"checklists"`
}

// Song is the atomic cue unit. OrderIndex is a dense 1..N ranking that is
// re-derived after every insert, move and delete.
type Song struct {
	ID            int    `json:"id"`
	OrderIndex    int    `json:"order_index"`
	Name          string `json:"name"`
	Mood          string `json:"mood"`
	Colors        string `json:"colors"`
	MovementStyle string `json:"movement_style"`
	EyeCandy      string `json:"eye_candy"`
	SpecialNotes  string `json:"special_notes"`
	GeneralNotes  string `json:"general_notes"`
}

// RigItem is one patched fixture row within a category. Count, watt,
// universe and address stay strings: they arrive as free-form user input
// and malformed values must degrade to zero instead of failing.
type RigItem struct {
	UID          string `json:"uid,omitempty"`
	Count        string `json:"count"`
	Manufacturer string `json:"manufacturer"`
	Model        string `json:"model"`
	Mode         string `json:"mode"`
	Universe     string `json:"universe"`
	Address      string `json:"address"`
	Watt         string `json:"watt"`
	Phase        string `json:"phase"`
}

// CustomDevice is a free-form device entry outside the fixed categories
type CustomDevice struct {
	RigItem
	Name string `json:"name"`
}

// VisualPosition is a 2-D stage-plan placement keyed by fixture UID
type VisualPosition struct {
	Left float64 `json:"left"`
	Top  float64 `json:"top"`
}

// RigSetup holds the rig inventory for a show. Itemized category lists
// fully replace the legacy flat wattage fields for that category.
type RigSetup struct {
	MainBrand string `json:"main_brand,omitempty"`

	Spots    []RigItem `json:"spots_items,omitempty"`
	Washes   []RigItem `json:"washes_items,omitempty"`
	Beams    []RigItem `json:"beams_items,omitempty"`
	Blinders []RigItem `json:"blinders_items,omitempty"`
	Strobes  []RigItem `json:"strobes_items,omitempty"`

	CustomDevices []CustomDevice `json:"custom_devices,omitempty"`

	// Legacy per-category wattage, only consulted when the matching
	// item list is empty
	WattSpots    string `json:"watt_spots,omitempty"`
	WattWashes   string `json:"watt_washes,omitempty"`
	WattBeams    string `json:"watt_beams,omitempty"`
	WattBlinders string `json:"watt_blinders,omitempty"`
	WattStrobes  string `json:"watt_strobes,omitempty"`

	PowerMain  string `json:"power_main,omitempty"`
	PowerLight string `json:"power_light,omitempty"`
	PowerSound string `json:"power_sound,omitempty"`
	PowerVideo string `json:"power_video,omitempty"`
	PowerFOH   string `json:"power_foh,omitempty"`
	PowerOther string `json:"power_other,omitempty"`

	Positions string `json:"positions,omitempty"`
	Notes     string `json:"notes,omitempty"`

	VisualPlan map[string]VisualPosition `json:"visual_plan,omitempty"`
}

// Category pairs a fixture category name with its item list and legacy
// wattage fallback, in stable export order.
type Category struct {
	Name       string
	Items      []RigItem
	LegacyWatt string
}

// Categories returns the fixture categories in their canonical order
func (r *RigSetup) Categories() []Category {
	if r == nil {
		return nil
	}
	return []Category{
		{Name: "spots", Items: r.Spots, LegacyWatt: r.WattSpots},
		{Name: "washes", Items: r.Washes, LegacyWatt: r.WattWashes},
		{Name: "beams", Items: r.Beams, LegacyWatt: r.WattBeams},
		{Name: "blinders", Items: r.Blinders, LegacyWatt: r.WattBlinders},
		{Name: "strobes", Items: r.Strobes, LegacyWatt: r.WattStrobes},
	}
}

// CheckItem is one entry of a category-scoped checklist
type CheckItem struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// ContactPerson is a production contact attached to a show
type ContactPerson struct {
	ID      int64  `json:"id"`
	ShowID  int    `json:"show_id"`
	Role    string `json:"role"`
	Name    string `json:"name,omitempty"`
	Company string `json:"company,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// ExtractedCue is a provisional cue recovered from a script import. It is
// never written to a show until a human confirms the commit step.
type ExtractedCue struct {
	Scene     string `json:"scene,omitempty"`
	Role      string `json:"role,omitempty"`
	Text      string `json:"text"`
	Uncertain bool   `json:"uncertain"`
}

// Clone returns a deep copy of the show. Encoders only ever see clones so
// they can never mutate the authoritative record.
func (s *Show) Clone() *Show {
	if s == nil {
		return nil
	}
	dup := *s
	dup.Songs = make([]*Song, len(s.Songs))
	for i, song := range s.Songs {
		c := *song
		dup.Songs[i] = &c
	}
	if s.Checklists != nil {
		dup.Checklists = make(map[string][]*CheckItem, len(s.Checklists))
		for cat, items := range s.Checklists {
			list := make([]*CheckItem, len(items))
			for i, item := range items {
				c := *item
				list[i] = &c
			}
			dup.Checklists[cat] = list
		}
	}
	dup.RigSetup = s.RigSetup.Clone()
	return &dup
}

// Clone returns a deep copy of the rig setup
func (r *RigSetup) Clone() *RigSetup {
	if r == nil {
		return nil
	}
	dup := *r
	dup.Spots = append([]RigItem(nil), r.Spots...)
	dup.Washes = append([]RigItem(nil), r.Washes...)
	dup.Beams = append([]RigItem(nil), r.Beams...)
	dup.Blinders = append([]RigItem(nil), r.Blinders...)
	dup.Strobes = append([]RigItem(nil), r.Strobes...)
	dup.CustomDevices = append([]CustomDevice(nil), r.CustomDevices...)
	if r.VisualPlan != nil {
		dup.VisualPlan = make(map[string]VisualPosition, len(r.VisualPlan))
		for k, v := range r.VisualPlan {
			dup.VisualPlan[k] = v
		}
	}
	return &dup
}
