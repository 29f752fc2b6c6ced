package workers

import "time"

func (p *EventPruner) SetClock(now func() time.Time) { p.now = now }
