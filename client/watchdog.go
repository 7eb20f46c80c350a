package client

// sendInfo 发送身份声明并进入冷却
func (c *GameClient) sendInfo(slot int, start bool, id Identity) {
	if err := c.sender.SendInfo(slot, start, id); err != nil {
		Log.Warnf("send info failed: slot=%d start=%v err=%v", slot, start, err)
	}
	c.slots[slot].Arm(TickSpeed)
	if !start {
		c.metrics.IncIdentityResends()
	}
}

// acknowledged 服务端最近一次确认的身份
func (c *GameClient) acknowledged(slot int) (Identity, bool) {
	if !c.snap.Valid() {
		return Identity{}, false
	}
	id := c.localIDs[slot]
	if id < 0 {
		return Identity{}, false
	}
	got, ok := c.snap.Cur.Clients[id]
	return got, ok
}

// CheckIdentity 身份复核：服务端可能在连接时静默丢弃或改写身份
// 仅在在线、菜单未占用焦点且刚跨过 Tick 边界时运行
func (c *GameClient) CheckIdentity(cfg Config, wasNewTick bool) {
	if c.net.State() != StateOnline || !wasNewTick {
		return
	}
	if c.ui != nil && c.ui.MenuActive() {
		return
	}
	c.checkSlot(0, cfg.Player)
	if c.net.DummyConnected() {
		c.checkSlot(1, cfg.Dummy)
	}
}

func (c *GameClient) checkSlot(slot int, want Identity) {
	s := &c.slots[slot]
	if s.Due() {
		if got, ok := c.acknowledged(slot); !ok || got != want {
			Log.Debugf("identity mismatch on slot %d, resending", slot)
			c.sendInfo(slot, false, want)
		} else {
			s.Confirm()
		}
	}
	if s.CheckCountdown() > 0 {
		s.Elapse(c.net.GameTick(slot) - c.net.PrevGameTick(slot))
	}
}
