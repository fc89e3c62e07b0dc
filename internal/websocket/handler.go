package websocket

// ServeWs subscribes conn to scope and blocks until the connection closes.
func ServeWs(hub *Hub, conn Conn, scope string) {
	client := newClient(hub, conn, scope)
	hub.register <- client

	go client.writePump()
	client.readPump()
}
