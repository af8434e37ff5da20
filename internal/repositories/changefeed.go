package repositories

import (
	"github.com/asaskevich/EventBus"
	"github.com/talentflow/ats/internal/events"
)

// publishChange emits a table-change event after a successful mutation.
// Read-side consumers re-run their query in response, replacing what
// they cached. A nil bus disables the feed (tests).
func publishChange(bus EventBus.Bus, table string, ids ...string) {
	if bus == nil {
		return
	}
	bus.Publish(events.TableChangedTopic, events.TableChanged{Table: table, IDs: ids})
}
