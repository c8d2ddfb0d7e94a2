// Terminal client for manual testing: joins a room, prints the live
// event stream with colors, and sends each input line as a chat
// message with the surrounding typing signals a real client emits.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/fasthttp/websocket"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
)

type Config struct {
	ServerURL string `env:"CLIENT_SERVER_URL,default=ws://localhost:3001/ws"`
	Username  string `env:"CLIENT_USERNAME,required=true"`
	Room      string `env:"CLIENT_ROOM,default=general"`
	Avatar    string `env:"CLIENT_AVATAR"`
}

// stopTypingDelay mirrors the quiet interval a browser client uses
// before telling the room it stopped typing.
const stopTypingDelay = 1 * time.Second

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func main() {
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	conn, _, err := websocket.DefaultDialer.Dial(config.ServerURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", config.ServerURL, err)
	}
	defer conn.Close()

	send(conn, "joinRoom", map[string]string{
		"username":     config.Username,
		"room":         config.Room,
		"customAvatar": config.Avatar,
	})
	color.Cyanln(fmt.Sprintf("Joined %q as %q. Type a message, Ctrl+D to quit.", config.Room, config.Username))

	go receive(conn, config.Username)

	var stopTimer *time.Timer
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := scanner.Text()
		if text == "" {
			continue
		}

		send(conn, "typing", nil)
		send(conn, "chatMessage", text)

		if stopTimer != nil {
			stopTimer.Stop()
		}
		stopTimer = time.AfterFunc(stopTypingDelay, func() {
			send(conn, "stopTyping", nil)
		})
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

func send(conn *websocket.Conn, event string, data any) {
	f := frame{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			log.Fatalf("Failed to encode %s: %v", event, err)
		}
		f.Data = raw
	}
	if err := conn.WriteJSON(f); err != nil {
		log.Fatalf("Failed to send %s: %v", event, err)
	}
}

func receive(conn *websocket.Conn, self string) {
	for {
		var f frame
		if err := conn.ReadJSON(&f); err != nil {
			color.Redln("Connection closed: " + err.Error())
			os.Exit(0)
		}

		switch f.Event {
		case "message":
			var m struct {
				Username string `json:"username"`
				Text     string `json:"text"`
				Time     string `json:"time"`
			}
			if err := json.Unmarshal(f.Data, &m); err != nil {
				continue
			}
			name := color.Green.Render(m.Username)
			if m.Username == self {
				name = color.Blue.Render(m.Username)
			}
			fmt.Printf("%s %s %s\n", color.Gray.Render(m.Time), name, m.Text)
		case "typing":
			var t struct {
				Username string `json:"username"`
			}
			if err := json.Unmarshal(f.Data, &t); err != nil || t.Username == self {
				continue
			}
			color.Yellowln(t.Username + " is typing...")
		case "roomUsers":
			var r struct {
				Room  string `json:"room"`
				Users []struct {
					Username string `json:"username"`
				} `json:"users"`
			}
			if err := json.Unmarshal(f.Data, &r); err != nil {
				continue
			}
			names := make([]string, 0, len(r.Users))
			for _, u := range r.Users {
				names = append(names, u.Username)
			}
			color.Cyanln(fmt.Sprintf("In %s: %v", r.Room, names))
		case "messageDeleted":
			color.Magentaln("A message was deleted")
		case "messageUpdated":
			color.Magentaln("A message was edited")
		}
	}
}
