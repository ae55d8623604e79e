package handlers

// Custom WebSocket close codes used by the state feed.
const (
	BadSubprotocolError = 3000 // Client asked for a subprotocol other than "state".
	SlowConsumerError   = 3001 // A snapshot could not be written before the write timeout.
)
