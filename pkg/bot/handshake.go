package bot

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/StoreStation/vibebot/pkg/chat"
	"github.com/StoreStation/vibebot/pkg/protocol"
)

// handshakeLoginConfig drives the handshake, login, and configuration
// states to completion, synchronously, before the client's concurrent
// read loop and ticker start. These states are inherently sequential
// request/response exchanges with no concurrent work to interleave, so
// driving them inline (rather than through the dispatcher) keeps the
// startup sequence readable as a single ordered script.
func (c *Client) handshakeLoginConfig() error {
	if err := c.sendHandshake(); err != nil {
		return err
	}
	if err := c.sendLoginStart(); err != nil {
		return err
	}
	if err := c.runLoginState(); err != nil {
		return err
	}
	return c.runConfigurationState()
}

func (c *Client) sendHandshake() error {
	w := protocol.NewWriter()
	w.VarInt(c.serverCfg.ProtocolVersion)
	w.String(c.serverCfg.Host)
	w.U16(c.serverCfg.Port)
	w.VarInt(2) // next state: login
	return c.conn.Send(protocol.HandshakeID, w.Bytes())
}

func (c *Client) sendLoginStart() error {
	id := uuid.UUID{}
	if c.clientCfg.CustomUUID != "" {
		parsed, err := uuid.Parse(c.clientCfg.CustomUUID)
		if err != nil {
			return fmt.Errorf("invalid customUUID %q: %w", c.clientCfg.CustomUUID, err)
		}
		id = parsed
	} else {
		id = protocol.OfflineUUID(c.clientCfg.Username)
	}

	w := protocol.NewWriter()
	w.String(c.clientCfg.Username)
	w.UUID(id)
	return c.conn.Send(protocol.LoginStartID, w.Bytes())
}

// runLoginState reads packets directly off the wire (no dispatcher; the
// dispatcher starts fielding packets once the background loop is up)
// until login-success moves the connection into configuration.
func (c *Client) runLoginState() error {
	for {
		pkt, err := c.conn.Recv()
		if err != nil {
			return err
		}
		switch pkt.ID {
		case protocol.SetCompressionID:
			r := protocol.NewReader(pkt.Payload)
			threshold, err := r.VarInt()
			if err != nil {
				return fmt.Errorf("set-compression: %w", err)
			}
			c.conn.SetCompression(threshold)
		case protocol.LoginSuccessID:
			w := protocol.NewWriter()
			if err := c.conn.Send(protocol.LoginAcknowledgedID, w.Bytes()); err != nil {
				return err
			}
			c.dispatcher.SetState(protocol.StateConfiguration)
			return nil
		case protocol.DisconnectLoginID:
			r := protocol.NewReader(pkt.Payload)
			raw, _ := r.String()
			return fmt.Errorf("disconnected during login: %s", chat.DecodeReason([]byte(raw), false))
		default:
			c.log.Debug("ignoring login-state packet", "id", pkt.ID)
		}
	}
}

func (c *Client) runConfigurationState() error {
	if err := c.sendClientInformation(); err != nil {
		return err
	}
	if err := c.conn.Send(protocol.KnownPacksID, mustVarInt0()); err != nil {
		return err
	}

	for {
		pkt, err := c.conn.Recv()
		if err != nil {
			return err
		}
		switch pkt.ID {
		case protocol.FinishConfigurationID:
			w := protocol.NewWriter()
			if err := c.conn.Send(protocol.AcknowledgeFinishID, w.Bytes()); err != nil {
				return err
			}
			c.dispatcher.SetState(protocol.StatePlay)
			return nil
		case protocol.DisconnectConfigID:
			r := protocol.NewReader(pkt.Payload)
			raw, _ := r.String()
			return fmt.Errorf("disconnected during configuration: %s", chat.DecodeReason([]byte(raw), false))
		default:
			c.log.Debug("ignoring configuration-state packet", "id", pkt.ID)
		}
	}
}

func (c *Client) sendClientInformation() error {
	w := protocol.NewWriter()
	w.String("en_us")
	w.I8(10)     // view distance
	w.VarInt(0)  // chat mode: enabled
	w.Bool(true) // chat colors
	w.U8(0x7F)   // all skin parts
	w.VarInt(1)  // main hand: right
	w.Bool(false) // text filtering
	w.Bool(true)  // server listing
	w.VarInt(2)   // particles: minimal
	return c.conn.Send(protocol.ClientInformationID, w.Bytes())
}

func mustVarInt0() []byte {
	w := protocol.NewWriter()
	w.VarInt(0)
	return w.Bytes()
}
