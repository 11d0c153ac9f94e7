package packet

// Client → server opcodes.
const (
	C_OPCODE_HELLO    byte = 1 // token S
	C_OPCODE_REGISTER byte = 2 // username S, class S
	C_OPCODE_INPUT    byte = 3 // flags C, seq DU, yaw F, animation S
	C_OPCODE_CAST     byte = 4 // ability S, hasAim C, [aim F F F]
	C_OPCODE_PING     byte = 5 // nonce DU
	C_OPCODE_QUIT     byte = 6
)

// Server → client opcodes.
const (
	S_OPCODE_WELCOME  byte = 128 // identity S, token S
	S_OPCODE_RESULT   byte = 129 // op C, code C, message S
	S_OPCODE_SNAPSHOT byte = 130 // msgpack body
	S_OPCODE_HIT      byte = 131 // attacker S, target S, damage D, health D
	S_OPCODE_PONG     byte = 132 // nonce DU, server tick DU
)

// Result codes carried by S_OPCODE_RESULT.
const (
	ResultOK             byte = 0
	ResultNotFound       byte = 1
	ResultAlreadyActive  byte = 2
	ResultOnCooldown     byte = 3
	ResultUnknownAbility byte = 4
	ResultBadRequest     byte = 5
	ResultInternal       byte = 6
)
