package client

// OnNewSnapshot 接收网络层交付的新快照对，派生本帧的快照状态
func (c *GameClient) OnNewSnapshot(pair *SnapPair) {
	if !pair.Valid() {
		return
	}
	c.snap = pair
	c.newTick = true
	c.metrics.IncSnapshots()

	cur, prev := pair.Cur, pair.Prev
	c.localIDs = cur.LocalClientIDs
	localID := c.localIDs[c.mux.Active()]
	c.localChar, c.hasLocal = cur.Character(localID)
	c.localPrevChar, c.hasLocalPrev = prev.Character(localID)

	c.gameOver = cur.GameOver()
	c.paused = cur.GameInfo != nil && cur.GameInfo.GameStateFlags&GameStateFlagPaused != 0
	if cur.GameInfo != nil {
		c.lastRoundStartTick = cur.GameInfo.RoundStartTick
	}
	c.lastFlagCarrier = cur.FlagCarrier

	demo := c.net.State() == StateDemoPlayback
	c.specInfo.UsePosition = false
	c.specInfo.Active = cur.Spectating || demo
	switch {
	case demo && c.demoSpecID != SpecFollow:
		c.specInfo.SpectatorID = c.demoSpecID
	case cur.SpectatorInfo != nil:
		c.specInfo.SpectatorID = cur.SpectatorInfo.SpectatorID
	default:
		c.specInfo.SpectatorID = SpecFreeview
	}

	for slot := 0; slot < NumDummies; slot++ {
		if ch, ok := cur.Character(c.localIDs[slot]); ok {
			c.tuning.UpdateLocalZone(slot, ch.TuneZone, cur.Tick)
		}
	}
	c.tuning.Expire(cur.Tick)
}

// Predict 从当前快照重建预测世界，并重放输入直到预测 Tick
// prevPredicted 总是 predicted 前一步的世界
func (c *GameClient) Predict(cfg Config) {
	if !cfg.Predict || c.net.State() == StateDemoPlayback || !c.snap.Valid() {
		return
	}
	active := c.mux.Active()
	predTick := c.net.PredGameTick(active)
	if !c.newTick && predTick <= c.predictedTick {
		return
	}

	cur := c.snap.Cur
	if predTick < cur.Tick {
		predTick = cur.Tick
	}
	localID := c.localIDs[active]

	c.gameWorld.LoadSnapshot(cur)
	c.predicted.CopyWorld(c.gameWorld)
	c.prevPredicted.CopyWorld(c.predicted)
	c.predictedPrevChar = c.worldChar(c.predicted, localID)

	for tick := cur.Tick + 1; tick <= predTick; tick++ {
		if tick == predTick {
			c.prevPredicted.CopyWorld(c.predicted)
			c.predictedPrevChar = c.worldChar(c.predicted, localID)
		}
		inputs := make(map[int]Input, NumDummies)
		for slot := 0; slot < NumDummies; slot++ {
			id := c.localIDs[slot]
			if id < 0 {
				continue
			}
			if in, ok := c.history.Get(slot, tick); ok {
				inputs[id] = in
			}
		}
		c.stepper.Step(c.predicted, inputs, c.tuning)
	}
	c.predictedChar = c.worldChar(c.predicted, localID)

	c.slots[active].OnPredictedTick(predTick)
	if c.DummyConnected() {
		c.slots[1-active].OnPredictedTick(predTick)
	}
	c.predictedTick = predTick
}

func (c *GameClient) worldChar(w *World, id int) Character {
	if ch, ok := w.Character(id); ok {
		return *ch
	}
	return Character{ClientID: id}
}

// UpdatePositions 每帧一次：计算本地角色与观战目标的渲染位置
// 只修改派生字段，不读取外部输入
func (c *GameClient) UpdatePositions(cfg Config) {
	if !c.snap.Valid() {
		return
	}
	active := c.mux.Active()
	demo := c.net.State() == StateDemoPlayback
	cur, prev := c.snap.Cur, c.snap.Prev
	frozen := false

	// 本地角色位置
	if cfg.Predict && !demo {
		if !cfg.AntiPing {
			if !c.hasLocal || cur.GameOver() {
				// 不使用预测
				frozen = true
			} else {
				c.localPos = Mix(c.predictedPrevChar.Pos, c.predictedChar.Pos, c.net.PredIntraGameTick(active))
			}
		} else {
			// anti-ping 下游戏结束的那一刻不能重新启用预测
			if !cur.GameOver() {
				if c.hasLocal {
					c.localPos = Mix(c.predictedPrevChar.Pos, c.predictedChar.Pos, c.net.PredIntraGameTick(active))
				} else {
					frozen = true
				}
			} else {
				frozen = true
			}
		}
	} else if c.hasLocal && c.hasLocalPrev {
		c.localPos = Mix(c.localPrevChar.Pos(), c.localChar.Pos(), c.net.IntraGameTick(active))
	} else {
		frozen = true
	}
	if frozen {
		c.metrics.IncFreezes()
	}

	// 观战位置
	if c.specInfo.Active {
		if c.multiViewActivated {
			c.HandleMultiView(cfg)
		} else if demo && c.demoSpecID != SpecFollow && c.specInfo.SpectatorID != SpecFreeview {
			p, okPrev := prev.Character(c.specInfo.SpectatorID)
			n, okCur := cur.Character(c.specInfo.SpectatorID)
			if okPrev && okCur {
				c.specInfo.Position = Mix(p.Pos(), n.Pos(), c.net.IntraGameTick(active))
				c.specInfo.UsePosition = true
			} else {
				Log.Debugf("spectated client %d missing from snapshot", c.specInfo.SpectatorID)
			}
		} else if si := cur.SpectatorInfo; si != nil &&
			((demo && c.demoSpecID == SpecFollow) || (!demo && c.specInfo.SpectatorID != SpecFreeview)) {
			// 目标切换时不插值，避免把瞬移平滑成一次扫镜
			if psi := prev.SpectatorInfo; psi != nil && psi.SpectatorID == si.SpectatorID {
				c.specInfo.Position = Mix(psi.Pos(), si.Pos(), c.net.IntraGameTick(active))
			} else {
				c.specInfo.Position = si.Pos()
			}
			c.specInfo.UsePosition = true
		}
	}

	if !c.multiViewActivated && c.multiView.IsInit {
		c.ResetMultiView()
	}
}
