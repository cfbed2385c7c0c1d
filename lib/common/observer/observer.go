package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// ContractEventObserver is triggered by every event a contract generates.
var ContractEventObserver = observable.New()

const (
	ResourceEvent    = "event"
	ConditionAll     = "*"
	ConditionAddress = "address"
)

type Event struct {
	Resource  string `json:"resource"`
	Condition string `json:"condition"`
	Id        string `json:"id"`
}

func NewEvent(resource, condition, id string) Event {
	return Event{
		Resource:  resource,
		Condition: condition,
		Id:        id,
	}
}

func (e Event) String() string {
	toStr := e.Resource + "-"
	if e.Condition == ConditionAll {
		toStr += e.Condition
	} else {
		toStr += e.Condition + "="
		toStr += e.Id
	}
	return toStr
}

// Names joins event names the way go-observable expects them, so one trigger
// reaches every listed subscription.
func Names(events ...Event) string {
	toStr := ""
	for i, e := range events {
		if i > 0 {
			toStr += " "
		}
		toStr += e.String()
	}
	return toStr
}
