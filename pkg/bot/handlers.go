package bot

import (
	"time"

	"github.com/StoreStation/vibebot/pkg/chat"
	"github.com/StoreStation/vibebot/pkg/motion"
	"github.com/StoreStation/vibebot/pkg/pathfind"
	"github.com/StoreStation/vibebot/pkg/protocol"
)

// registerHandlers wires every core play-state packet (and the mid-play
// finish-configuration) into the dispatcher. Everything else in a
// given state is left unregistered, which the dispatcher logs and
// ignores per the "only the packets that drive the core are specified"
// scope.
func (c *Client) registerHandlers() {
	d := c.dispatcher
	// login and the initial configuration pass are driven synchronously in
	// handshakeLoginConfig, before the dispatcher-backed loop starts; the
	// only configuration-state packet the dispatcher ever needs to see is
	// the ack+transition when a server reconfigures mid-play.
	d.Register(protocol.StateConfiguration, protocol.FinishConfigurationID, c.handleFinishConfigurationMidPlay)

	d.Register(protocol.StatePlay, protocol.JoinGameID, c.handleJoinGame)
	d.Register(protocol.StatePlay, protocol.SynchronizePlayerPositionID, c.handleSyncPosition)
	d.Register(protocol.StatePlay, protocol.KeepAliveClientboundID, c.handleKeepAlive)
	d.Register(protocol.StatePlay, protocol.PingClientboundID, c.handlePing)
	d.Register(protocol.StatePlay, protocol.ChunkDataID, c.handleChunkData)
	d.Register(protocol.StatePlay, protocol.SpawnEntityID, c.handleSpawnEntity)
	d.Register(protocol.StatePlay, protocol.UpdateEntityPositionID, c.handleUpdateEntityPosition)
	d.Register(protocol.StatePlay, protocol.UpdateEntityPosAndRotID, c.handleUpdateEntityPosAndRot)
	d.Register(protocol.StatePlay, protocol.TeleportEntityID, c.handleTeleportEntity)
	d.Register(protocol.StatePlay, protocol.RemoveEntitiesID, c.handleRemoveEntities)
	d.Register(protocol.StatePlay, protocol.SetHealthID, c.handleSetHealth)
	d.Register(protocol.StatePlay, protocol.ChatMessageClientboundID, c.handleChatMessage)
	d.Register(protocol.StatePlay, protocol.DisconnectPlayID, c.handleDisconnect)
	d.Register(protocol.StatePlay, protocol.StartConfigurationID, c.handleStartConfiguration)
}

func (c *Client) handleJoinGame(payload []byte) error {
	r := protocol.NewReader(payload)
	entityID, err := r.I32()
	if err != nil {
		return err
	}
	if _, err := r.Bool(); err != nil { // hardcore
		return err
	}

	c.entityID = entityID
	sender := positionSender{c: c}
	router := pathRequester{c: c}
	c.motion = motion.New(c.world, sender, router, motion.Vec3{})

	c.emit(Event{Type: EventLogin, EntityID: entityID})
	return nil
}

func (c *Client) handleSyncPosition(payload []byte) error {
	r := protocol.NewReader(payload)
	teleportID, err := r.VarInt()
	if err != nil {
		return err
	}
	x, err := r.F64()
	if err != nil {
		return err
	}
	y, err := r.F64()
	if err != nil {
		return err
	}
	z, err := r.F64()
	if err != nil {
		return err
	}
	if _, err := r.F64(); err != nil { // dx, relative-flag encoding not modeled
		return err
	}
	if _, err := r.F64(); err != nil {
		return err
	}
	if _, err := r.F64(); err != nil {
		return err
	}
	yaw, err := r.F32()
	if err != nil {
		return err
	}
	pitch, err := r.F32()
	if err != nil {
		return err
	}

	ack := protocol.NewWriter()
	ack.VarInt(teleportID)
	if err := c.send(protocol.ConfirmTeleportID, ack.Bytes()); err != nil {
		return err
	}

	if c.motion != nil {
		c.motion.ServerPositionReset(motion.Vec3{X: x, Y: y, Z: z})
	}
	c.emit(Event{Type: EventPosition, X: x, Y: y, Z: z, Yaw: yaw, Pitch: pitch})
	return nil
}

func (c *Client) handleKeepAlive(payload []byte) error {
	r := protocol.NewReader(payload)
	id, err := r.I64()
	if err != nil {
		return err
	}
	w := protocol.NewWriter()
	w.I64(id)
	return c.send(protocol.KeepAliveServerboundID, w.Bytes())
}

func (c *Client) handlePing(payload []byte) error {
	r := protocol.NewReader(payload)
	id, err := r.I32()
	if err != nil {
		return err
	}
	w := protocol.NewWriter()
	w.I32(id)
	return c.send(protocol.PongServerboundID, w.Bytes())
}

func (c *Client) handleChunkData(payload []byte) error {
	r := protocol.NewReader(payload)
	cx, err := r.I32()
	if err != nil {
		return err
	}
	cz, err := r.I32()
	if err != nil {
		return err
	}
	body := r.RestBytes()

	if err := c.world.StoreChunk(cx, cz, body); err != nil {
		c.chatFailCt++
		c.log.Debug("chunk decode failed, skipping", "chunkX", cx, "chunkZ", cz, "error", err)
		return nil
	}
	c.setChunkLoaded(cx, cz)
	return nil
}

func (c *Client) handleSpawnEntity(payload []byte) error {
	r := protocol.NewReader(payload)
	id, err := r.VarInt()
	if err != nil {
		return err
	}
	if _, err := r.UUID(); err != nil {
		return err
	}
	entityType, err := r.VarInt()
	if err != nil {
		return err
	}
	x, err := r.F64()
	if err != nil {
		return err
	}
	y, err := r.F64()
	if err != nil {
		return err
	}
	z, err := r.F64()
	if err != nil {
		return err
	}

	c.tracker.Add(id, entityType, x, y, z, time.Now())
	c.updateEntityGauge()
	c.emit(Event{Type: EventSpawn, EntityID: id, X: x, Y: y, Z: z})
	return nil
}

func (c *Client) handleUpdateEntityPosition(payload []byte) error {
	r := protocol.NewReader(payload)
	id, err := r.VarInt()
	if err != nil {
		return err
	}
	dx, err := r.I16()
	if err != nil {
		return err
	}
	dy, err := r.I16()
	if err != nil {
		return err
	}
	dz, err := r.I16()
	if err != nil {
		return err
	}
	const unit = 4096.0
	c.tracker.UpdateRelative(id, float64(dx)/unit, float64(dy)/unit, float64(dz)/unit, time.Now())
	return nil
}

func (c *Client) handleUpdateEntityPosAndRot(payload []byte) error {
	// Shares the leading id+delta layout with update-entity-position; the
	// trailing rotation bytes don't affect tracked position, so the same
	// decode covers both once the rotation bytes are skipped.
	r := protocol.NewReader(payload)
	id, err := r.VarInt()
	if err != nil {
		return err
	}
	dx, err := r.I16()
	if err != nil {
		return err
	}
	dy, err := r.I16()
	if err != nil {
		return err
	}
	dz, err := r.I16()
	if err != nil {
		return err
	}
	const unit = 4096.0
	c.tracker.UpdateRelative(id, float64(dx)/unit, float64(dy)/unit, float64(dz)/unit, time.Now())
	return nil
}

func (c *Client) handleTeleportEntity(payload []byte) error {
	r := protocol.NewReader(payload)
	id, err := r.VarInt()
	if err != nil {
		return err
	}
	x, err := r.F64()
	if err != nil {
		return err
	}
	y, err := r.F64()
	if err != nil {
		return err
	}
	z, err := r.F64()
	if err != nil {
		return err
	}
	c.tracker.UpdateAbsolute(id, x, y, z, time.Now())
	return nil
}

func (c *Client) handleRemoveEntities(payload []byte) error {
	r := protocol.NewReader(payload)
	count, err := r.VarInt()
	if err != nil {
		return err
	}
	for i := int32(0); i < count; i++ {
		id, err := r.VarInt()
		if err != nil {
			return err
		}
		c.tracker.Remove(id)
	}
	c.updateEntityGauge()
	return nil
}

func (c *Client) handleSetHealth(payload []byte) error {
	r := protocol.NewReader(payload)
	health, err := r.F32()
	if err != nil {
		return err
	}
	food, err := r.VarInt()
	if err != nil {
		return err
	}
	saturation, err := r.F32()
	if err != nil {
		return err
	}

	c.emit(Event{Type: EventHealth, Health: health, Food: food, Saturation: saturation})

	if health <= 0 {
		w := protocol.NewWriter()
		w.VarInt(0)
		return c.send(protocol.ClientStatusID, w.Bytes())
	}
	return nil
}

// handleChatMessage decodes a clientbound chat packet as a best-effort
// NBT-encoded text component, matching the disconnect reason's encoding
// on this protocol version.
func (c *Client) handleChatMessage(payload []byte) error {
	text := chat.DecodeReason(payload, true)
	c.emit(Event{Type: EventChat, Text: text})
	return nil
}

// handleDisconnect handles play/disconnect, whose reason is NBT-encoded
// on this protocol version (login/configuration disconnects carry a
// plain JSON string instead, but those states are driven synchronously
// in handshakeLoginConfig, which reads their reason directly).
func (c *Client) handleDisconnect(payload []byte) error {
	reason := chat.DecodeReason(payload, true)
	c.emit(Event{Type: EventDisconnect, Reason: reason})
	c.Disconnect()
	return nil
}

func (c *Client) handleStartConfiguration(payload []byte) error {
	w := protocol.NewWriter()
	if err := c.send(protocol.AcknowledgeConfigID, w.Bytes()); err != nil {
		return err
	}
	c.dispatcher.SetState(protocol.StateConfiguration)
	return nil
}

// handleFinishConfigurationMidPlay handles the ack+transition back to play
// when a server reconfigures an already-joined client (see
// handleStartConfiguration). The initial configuration pass uses the same
// ack sequence but drives it synchronously in handshakeLoginConfig,
// before the dispatcher is reading packets.
func (c *Client) handleFinishConfigurationMidPlay(payload []byte) error {
	w := protocol.NewWriter()
	if err := c.send(protocol.AcknowledgeFinishID, w.Bytes()); err != nil {
		return err
	}
	c.dispatcher.SetState(protocol.StatePlay)
	return nil
}

func (c *Client) updateEntityGauge() {
	if c.metrics != nil {
		c.metrics.TrackedEntites.Set(float64(c.tracker.Count()))
	}
}

// positionSender adapts Client to motion.PacketSender, throttling
// outbound position packets on the shared token bucket.
type positionSender struct {
	c *Client
}

func (s positionSender) SendPosition(pos motion.Vec3, yaw, pitch float32, onGround bool) error {
	if !s.c.outbound.Allow() {
		return nil
	}
	w := protocol.NewWriter()
	w.F64(pos.X)
	w.F64(pos.Y)
	w.F64(pos.Z)
	w.F32(yaw)
	w.F32(pitch)
	w.Bool(onGround)
	return s.c.send(protocol.SetPlayerPosAndRotID, w.Bytes())
}

// pathRequester adapts Client to motion.PathRequester.
type pathRequester struct {
	c *Client
}

func (p pathRequester) RequestPath(from, goal pathfind.Cell) ([]pathfind.Cell, error) {
	path, err := pathfind.Find(p.c.world, from, goal, pathfind.Options{})
	if err != nil {
		return nil, err
	}
	if p.c.metrics != nil {
		p.c.metrics.PathNodeExpansions.Observe(float64(len(path)))
	}
	return path, nil
}
