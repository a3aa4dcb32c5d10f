package engine

// Category is one of the fixed event tags spec §4.9 defines.
type Category string

const (
	CategoryTribeFormed         Category = "tribeFormed"
	CategoryTribeSplit          Category = "tribeSplit"
	CategoryCivilizationFormed  Category = "civilizationFormed"
	CategoryLeaderDied          Category = "leaderDied"
	CategoryWarDeclared         Category = "warDeclared"
	CategoryWarEnded            Category = "warEnded"
	CategoryTerritoryConquered  Category = "territoryConquered"
	CategoryAllianceFormed      Category = "allianceFormed"
	CategoryCityFounded         Category = "cityFounded"
	CategoryPandemicStarted     Category = "pandemicStarted"
	CategoryDisasterOccurred    Category = "disasterOccurred"
	CategoryTechAdvancement     Category = "techAdvancement"
	CategorySettlement          Category = "settlement"
	CategoryDisaster            Category = "disaster"
	CategoryExtinction          Category = "extinction"
	CategoryConquest            Category = "conquest"
	CategoryCollapse            Category = "collapse"
	CategoryTensionRising       Category = "tensionRising"
	CategoryIdeologicalShift    Category = "ideologicalShift"
)

// Location is an optional tile-coordinate hint an external renderer can
// use to pan to the event's origin.
type Location struct {
	X, Y int
}

// Event is one append-only fact in the log: what happened, when, where
// (optionally), and under which fixed category tag.
type Event struct {
	Year     int
	Message  string
	Location *Location
	Category Category
}

// surfaceCap is the maximum number of recent events kept visible to a UI;
// spec §4.9 fixes this at 200.
const surfaceCap = 200

// EventLog is an append-only sequence of events split into a capped
// surface ring (most recent surfaceCap, for a UI) and an unbounded latent
// list (for history export), per spec §4.9 and design doc Section 9's
// cursor-based forward-read model.
type EventLog struct {
	latent  []Event
	surface []Event
}

// NewEventLog creates an empty log.
func NewEventLog() *EventLog {
	return &EventLog{}
}

// Emit appends e to both the latent history and the surface ring, evicting
// the oldest surface entry if the ring is already full. Event emission
// order matches cause order within a tick, since Emit is called inline as
// each cause happens.
func (l *EventLog) Emit(e Event) {
	l.latent = append(l.latent, e)
	l.surface = append(l.surface, e)
	if len(l.surface) > surfaceCap {
		l.surface = l.surface[len(l.surface)-surfaceCap:]
	}
}

// Surface returns the most recent surface events, oldest first.
func (l *EventLog) Surface() []Event {
	return l.surface
}

// Latent returns the full unbounded history, oldest first. Used by the
// persistence archive for history export, never by the live UI surface.
func (l *EventLog) Latent() []Event {
	return l.latent
}

// Cursor is an opaque position into the latent event history.
type Cursor int

// Since returns every latent event appended after cursor, plus the cursor
// a subsequent call should pass to continue reading forward from there.
func (l *EventLog) Since(cursor Cursor) ([]Event, Cursor) {
	if int(cursor) >= len(l.latent) {
		return nil, cursor
	}
	if cursor < 0 {
		cursor = 0
	}
	return l.latent[cursor:], Cursor(len(l.latent))
}
