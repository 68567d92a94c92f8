// Package errors provides the structured error type used across sheetform.
//
// Every layer returns *Error values carrying a Code, a user-facing message
// and optional metadata. The gRPC handler converts them with ToGRPCError.
//
// # Basic Usage
//
//	err := errors.NotFound("form session not found").
//	    WithMeta("session_id", id)
//
//	if err := repo.Update(ctx, input); err != nil {
//	    return errors.Wrap(err, "failed to save form session")
//	}
//
// # Validation Errors
//
// Dependency configs and request inputs are checked with the builder:
//
//	vb := errors.NewValidationBuilder()
//	errors.ValidateRequired("player_id", input.PlayerID, vb)
//	if err := vb.Build(); err != nil {
//	    return err
//	}
//
// Field violations keep their insertion order so that users are re-prompted
// for fields in a stable order. When converted to gRPC they travel as a
// google.rpc.BadRequest detail.
//
// Character sheet validation failures are not errors in the Go sense until
// they reach the transport edge; see package charactersheet.
package errors
