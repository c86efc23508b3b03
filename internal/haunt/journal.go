package haunt

// Journal kinds.
const (
	KindActivate       = "activate"
	KindDeactivate     = "deactivate"
	KindReload         = "reload"
	KindCreationFailed = "creation_failed"
)

// Journal receives lifecycle records. Record must not block the tick.
type Journal interface {
	Record(kind, mapName, detail string)
}

// NopJournal discards every record.
type NopJournal struct{}

func (NopJournal) Record(string, string, string) {}
