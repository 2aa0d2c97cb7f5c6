package llm

import (
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/message"
)

func init() {
	err := component.RegisterPayload(&component.PayloadRegistration{
		Domain:      "advisory",
		Category:    "call",
		Version:     "v1",
		Description: "Oracle call record for trajectory tracking",
		Factory:     func() any { return &CallRecord{} },
	})
	if err != nil {
		panic("failed to register CallRecord payload: " + err.Error())
	}
}

// CallRecordType is the message type for oracle call records.
var CallRecordType = message.Type{Domain: "advisory", Category: "call", Version: "v1"}
