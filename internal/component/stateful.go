package component

import (
	"context"
	"crypto/md5"
	"encoding/binary"

	"github.com/vk/fwgen/internal/codegen"
	"github.com/vk/fwgen/internal/ctxlog"
	"github.com/vk/fwgen/internal/schema"
)

// Restore modes understood by the firmware preferences layer.
const (
	RestoreAlwaysInitialValue = "ALWAYS_INITIAL_VALUE"
	RestoreDefault            = "DEFAULT"
	RestoreFromFlash          = "FROM_FLASH"
)

const (
	// KeyRestoreMode selects where a stateful component restores from.
	KeyRestoreMode = "restore_mode"
	// KeyRestoreValue toggles restoring the last value after a reset.
	KeyRestoreValue = "restore_value"
)

// StatefulSchema is the extension accepted by components whose value can
// survive a reset.
var StatefulSchema = schema.MustNew(
	schema.Optional(KeyRestoreMode, schema.OneOf(RestoreAlwaysInitialValue, RestoreDefault, RestoreFromFlash)),
)

// PreferenceHash derives the preference type id for a restorable value from
// its identifier: the first four bytes of the MD5 digest, big endian.
func PreferenceHash(id string) uint32 {
	sum := md5.Sum([]byte(id))
	return binary.BigEndian.Uint32(sum[:4])
}

// ApplyRestoreConfig emits the initial value and restore setup of a stateful
// component. restore_value and restore_mode are emitted as given; the
// firmware decides between them when both are set.
func ApplyRestoreConfig(ctx context.Context, prog *codegen.Program, v *codegen.Variable, rec *schema.Record, typ codegen.Expression, initial codegen.Expression) error {
	logger := ctxlog.FromContext(ctx).With("id", v.Name, "type", typ.String())

	prog.Add(v.Call("set_initial_value", initial))

	restoreValue, hasRestoreValue := rec.Bool(KeyRestoreValue)
	mode := rec.String(KeyRestoreMode)

	if hasRestoreValue && mode != "" {
		logger.Warn("Both restore_value and restore_mode are set; both are passed to the firmware unchanged.",
			"restore_value", restoreValue, "restore_mode", mode)
	}

	if hasRestoreValue {
		prog.Add(v.Call("set_restore_value", codegen.BoolLiteral(restoreValue)))
	}
	if mode != "" {
		prog.Add(v.Call("set_restore_mode", codegen.RawExpression("esphome::RESTORE_"+mode)))
	}

	if restoreValue || (mode != "" && mode != RestoreAlwaysInitialValue) {
		hash := PreferenceHash(v.Name)
		prog.Add(v.Call("set_preference_hash", codegen.Uint32Literal(hash)))
		logger.Debug("Restore enabled.", "preference_hash", hash)
	}
	return nil
}
