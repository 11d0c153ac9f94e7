package handler

import (
	"context"
	"fmt"

	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
	"github.com/arenacore/server/internal/world"
	"go.uber.org/zap"
)

// HandleHello processes C_HELLO. The token is opaque; an empty token asks
// the server to mint one. The same token always maps to the same identity,
// so a client that keeps its token resumes its archived player.
func HandleHello(sess *net.Session, r *packet.Reader, deps *Deps) {
	token := r.ReadS()
	if token == "" {
		t, err := world.NewToken()
		if err != nil {
			deps.Log.Error("產生權杖失敗", zap.Error(err))
			sendResult(sess, packet.C_OPCODE_HELLO, err)
			sess.Close()
			return
		}
		token = t
	}
	id := world.IdentityFromToken(token)

	if !deps.Sessions.Bind(sess, id) {
		deps.Log.Warn("身分已在其他連線使用中",
			zap.Uint64("session", sess.ID),
			zap.String("identity", id.Short()),
		)
		// stay in handshake so the client can retry with another token
		sendBadRequest(sess, packet.C_OPCODE_HELLO, "identity already connected")
		return
	}
	sess.SetState(packet.StateConnected)
	deps.Game.OnConnect(context.Background(), id)

	w := packet.NewWriterWithOpcode(packet.S_OPCODE_WELCOME)
	w.WriteS(id.String())
	w.WriteS(token)
	sess.Send(w.Bytes())

	deps.Log.Info(fmt.Sprintf("玩家握手完成  session=%d  identity=%s", sess.ID, id.Short()))
}
