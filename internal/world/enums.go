package world

// Kind names one of the three editable collections. The string form is the
// value sent as "entity" on image uploads.
type Kind string

const (
	KindLocation  Kind = "location"
	KindCharacter Kind = "character"
	KindChronicle Kind = "chronicle"
)

// Valid reports whether k is a known collection.
func (k Kind) Valid() bool {
	switch k {
	case KindLocation, KindCharacter, KindChronicle:
		return true
	}
	return false
}

// Category classifies a location on the map.
type Category string

const (
	CategoryMystic Category = "mystic"
	CategoryNature Category = "nature"
	CategoryCity   Category = "city"
	CategoryRuin   Category = "ruin"

	DefaultCategory = CategoryMystic
)

// Categories lists every category in display order.
var Categories = []Category{CategoryMystic, CategoryNature, CategoryCity, CategoryRuin}

// Valid reports whether c is one of the closed set of categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryMystic, CategoryNature, CategoryCity, CategoryRuin:
		return true
	}
	return false
}

// OrDefault returns c when valid and DefaultCategory otherwise, including
// for the zero value.
func (c Category) OrDefault() Category {
	if c.Valid() {
		return c
	}
	return DefaultCategory
}

// LocationStatus is the unlock state of a location on the public map.
type LocationStatus string

const (
	LocationLocked   LocationStatus = "locked"
	LocationUnlocked LocationStatus = "unlocked"

	DefaultLocationStatus = LocationUnlocked
)

// LocationStatuses lists every location status in display order.
var LocationStatuses = []LocationStatus{LocationUnlocked, LocationLocked}

func (s LocationStatus) Valid() bool {
	switch s {
	case LocationLocked, LocationUnlocked:
		return true
	}
	return false
}

func (s LocationStatus) OrDefault() LocationStatus {
	if s.Valid() {
		return s
	}
	return DefaultLocationStatus
}

// DiscoveryStage controls how much of a character the viewer reveals.
type DiscoveryStage string

const (
	StageHidden   DiscoveryStage = "hidden"
	StageRumor    DiscoveryStage = "rumor"
	StageRevealed DiscoveryStage = "revealed"

	DefaultDiscoveryStage = StageRevealed
)

// DiscoveryStages lists every stage from least to most visible.
var DiscoveryStages = []DiscoveryStage{StageHidden, StageRumor, StageRevealed}

func (s DiscoveryStage) Valid() bool {
	switch s {
	case StageHidden, StageRumor, StageRevealed:
		return true
	}
	return false
}

func (s DiscoveryStage) OrDefault() DiscoveryStage {
	if s.Valid() {
		return s
	}
	return DefaultDiscoveryStage
}

// ChronicleStatus tracks where a timeline event sits in the story.
type ChronicleStatus string

const (
	ChroniclePending   ChronicleStatus = "pending"
	ChronicleActive    ChronicleStatus = "active"
	ChronicleCompleted ChronicleStatus = "completed"

	DefaultChronicleStatus = ChroniclePending
)

// ChronicleStatuses lists every chronicle status in display order.
var ChronicleStatuses = []ChronicleStatus{ChronicleCompleted, ChronicleActive, ChroniclePending}

func (s ChronicleStatus) Valid() bool {
	switch s {
	case ChroniclePending, ChronicleActive, ChronicleCompleted:
		return true
	}
	return false
}

func (s ChronicleStatus) OrDefault() ChronicleStatus {
	if s.Valid() {
		return s
	}
	return DefaultChronicleStatus
}
