// Command schemagen emits a JSON Schema document describing the wire
// message set (netcode/wire), so client/server implementations in other
// languages can validate against the same contract. It is a developer tool
// run by hand (no go:generate directive invokes it), not part of the
// runtime engine — see go.mod's
// invopop/jsonschema and iancoleman/orderedmap dependencies, kept for
// exactly this purpose.
//
// Usage: go run ./wire/cmd/schemagen -out schema/wire.schema.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/invopop/jsonschema"

	"netcode/wire"
)

func main() {
	var outPath string
	flag.StringVar(&outPath, "out", "", "output path for the JSON schema")
	flag.Parse()

	if outPath == "" {
		log.Fatal("schemagen: missing -out path")
	}

	schema, err := buildSchema()
	if err != nil {
		log.Fatalf("schemagen: %v", err)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		log.Fatalf("schemagen: marshal schema: %v", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		log.Fatalf("schemagen: create output dir: %v", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		log.Fatalf("schemagen: write schema: %v", err)
	}
}

// payloadByKind maps each closed Kind to the Go type describing its
// payload shape, driving the reflector below.
var payloadByKind = map[wire.Kind]any{
	wire.KindConnect:          wire.ConnectPayload{},
	wire.KindConnected:        wire.ConnectedPayload{},
	wire.KindHeartbeat:        wire.HeartbeatPayload{},
	wire.KindHeartbeatResp:    wire.HeartbeatRespPayload{},
	wire.KindSubmitInput:      wire.SubmitInputPayload{},
	wire.KindAck:              wire.AckPayload{},
	wire.KindAuthInput:        wire.AuthInputPayload{},
	wire.KindHintInput:        wire.HintInputPayload{},
	wire.KindRequestAuthInput: wire.RequestAuthInputPayload{},
}

func buildSchema() (*jsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}

	envelopeSchema := reflector.ReflectFromType(reflect.TypeOf(wire.Envelope{}))
	if envelopeSchema == nil {
		return nil, fmt.Errorf("failed to reflect envelope schema")
	}
	envelopeSchema.Title = "Envelope"
	envelopeSchema.Description = "Outermost wire shape: protocol version, message kind, and an opaque payload whose shape is determined by kind."

	kinds := make([]string, 0, len(payloadByKind))
	for kind := range payloadByKind {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	variants := make([]*jsonschema.Schema, 0, len(payloadByKind))
	for _, k := range kinds {
		kind := wire.Kind(k)
		payloadSchema := reflector.ReflectFromType(reflect.TypeOf(payloadByKind[kind]))
		if payloadSchema == nil {
			return nil, fmt.Errorf("failed to reflect payload schema for kind %s", kind)
		}
		payloadSchema.Title = string(kind)
		variants = append(variants, payloadSchema)
	}

	root := &jsonschema.Schema{
		Version:     jsonschema.Version,
		Title:       "Netcode Wire Protocol",
		Description: "Closed message-tag variant set exchanged between the prediction/rollback client and its server.",
		OneOf:       variants,
		Definitions: jsonschema.Definitions{"envelope": envelopeSchema},
	}

	return root, nil
}
