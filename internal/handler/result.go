package handler

import (
	"errors"

	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/sim"
)

// resultCode maps a domain error onto its wire code.
func resultCode(err error) byte {
	switch {
	case err == nil:
		return packet.ResultOK
	case errors.Is(err, sim.ErrNotFound):
		return packet.ResultNotFound
	case errors.Is(err, sim.ErrAlreadyActive):
		return packet.ResultAlreadyActive
	case errors.Is(err, sim.ErrOnCooldown):
		return packet.ResultOnCooldown
	case errors.Is(err, sim.ErrUnknownAbility):
		return packet.ResultUnknownAbility
	case errors.Is(err, sim.ErrInvalidInput):
		return packet.ResultBadRequest
	}
	return packet.ResultInternal
}

// sendResult sends S_RESULT for the request opcode op.
func sendResult(sess *net.Session, op byte, err error) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_RESULT)
	w.WriteC(op)
	w.WriteC(resultCode(err))
	if err != nil {
		w.WriteS(err.Error())
	} else {
		w.WriteS("")
	}
	sess.Send(w.Bytes())
}

func sendBadRequest(sess *net.Session, op byte, msg string) {
	w := packet.NewWriterWithOpcode(packet.S_OPCODE_RESULT)
	w.WriteC(op)
	w.WriteC(packet.ResultBadRequest)
	w.WriteS(msg)
	sess.Send(w.Bytes())
}
