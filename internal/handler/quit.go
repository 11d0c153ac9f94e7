package handler

import (
	"fmt"

	"github.com/arenacore/server/internal/net"
	"github.com/arenacore/server/internal/net/packet"
)

// HandleQuit processes C_QUIT. It only closes the session;
// InputSystem.handleDisconnect archives the player.
func HandleQuit(sess *net.Session, _ *packet.Reader, deps *Deps) {
	deps.Log.Info(fmt.Sprintf("玩家登出  session=%d  identity=%s", sess.ID, sess.Identity.Short()))
	sess.Close()
}
