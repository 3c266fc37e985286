// Package schedulev1 defines the schedule.v1.ScheduleService gRPC contract.
// Messages travel as JSON through a codec registered under the "json"
// content-subtype (application/grpc+json), which browser clients can speak
// through the gRPC-Web bridge without generated stubs.
package schedulev1

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const CodecName = "json"

type Codec struct{}

func (Codec) Name() string { return CodecName }

func (Codec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (Codec) Unmarshal(data []byte, v any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, v)
}

func init() {
	encoding.RegisterCodec(Codec{})
}
