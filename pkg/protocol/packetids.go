package protocol

// Packet ids for the core set of messages the client sends and consumes.
// Everything else in a given state is dispatched to the "unhandled,
// ignored" path; per-packet tables for the rest of the protocol are an
// external collaborator's concern.
const (
	// Handshake, client to server.
	HandshakeID = 0x00

	// Login.
	LoginStartID        = 0x00 // client -> server
	LoginSuccessID      = 0x02 // server -> client
	SetCompressionID    = 0x03 // server -> client
	LoginAcknowledgedID = 0x03 // client -> server

	// Configuration.
	ClientInformationID      = 0x00 // client -> server
	CookieResponseConfigID   = 0x01 // client -> server
	PluginMessageConfigID    = 0x02 // client -> server
	FinishConfigurationID    = 0x03 // server -> client
	AcknowledgeFinishID      = 0x03 // client -> server
	KnownPacksID             = 0x07 // client -> server
	ResourcePackResponseID   = 0x06 // client -> server
	RegistryDataConfigID     = 0x07 // server -> client, ignored
	ServerLinksConfigID      = 0x04 // server -> client, ignored

	// Play, server to client.
	JoinGameID                   = 0x2B
	SynchronizePlayerPositionID  = 0x41
	KeepAliveClientboundID       = 0x26
	PingClientboundID            = 0x37
	ChunkDataID                  = 0x27
	SpawnEntityID                = 0x01
	UpdateEntityPositionID       = 0x2F
	UpdateEntityPosAndRotID      = 0x30
	TeleportEntityID             = 0x1F
	RemoveEntitiesID             = 0x43
	SetHealthID                  = 0x61
	ChatMessageClientboundID     = 0x73
	DisconnectPlayID             = 0x1D
	DisconnectLoginID            = 0x00
	DisconnectConfigID           = 0x02
	StartConfigurationID         = 0x65

	// Play, client to server.
	ConfirmTeleportID            = 0x00
	ChunkBatchReceivedID         = 0x0A
	SetPlayerPosAndRotID         = 0x1E
	ChatServerboundID            = 0x08
	ClientStatusID               = 0x0B
	KeepAliveServerboundID       = 0x1B
	PongServerboundID            = 0x2C
	AcknowledgeConfigID          = 0x0B
)
