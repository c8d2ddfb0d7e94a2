package e2e

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fasthttp/websocket"
	"github.com/gookit/color"
	"github.com/stretchr/testify/suite"
)

const recvTimeout = 5 * time.Second

type BaseWsSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseWsSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.ServerAddr == "" {
		s.T().Skip("E2E_SERVER_ADDR not set, skipping e2e suite")
	}
}

type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// WsClient is one live connection plus the helpers scenarios build on.
type WsClient struct {
	suite *BaseWsSuite
	name  string
	conn  *websocket.Conn
}

// Connect opens a websocket to the server under test with a colorized
// header so interleaved client logs stay readable.
func (s *BaseWsSuite) Connect(name string) *WsClient {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	s.T().Log(header)

	url := fmt.Sprintf("ws://%s/ws", s.Config.ServerAddr)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	s.Require().NoError(err, "Failed to connect to "+url)
	return &WsClient{suite: s, name: name, conn: conn}
}

func (c *WsClient) Close() {
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.conn.Close()
}

func (c *WsClient) Send(event string, data any) {
	f := Frame{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		c.suite.Require().NoError(err)
		f.Data = raw
	}
	c.log("SEND", f)
	c.suite.Require().NoError(c.conn.WriteJSON(f))
}

// Recv returns the next frame within the receive timeout.
func (c *WsClient) Recv() Frame {
	c.conn.SetReadDeadline(time.Now().Add(recvTimeout))
	var f Frame
	c.suite.Require().NoError(c.conn.ReadJSON(&f), "%s: no frame within %v", c.name, recvTimeout)
	c.log("RECV", f)
	return f
}

// RecvEvent skips frames until one matches the wanted event name.
// Rosters and typing signals interleave freely with messages, so
// scenarios wait for the frame they assert on.
func (c *WsClient) RecvEvent(event string) Frame {
	deadline := time.Now().Add(recvTimeout)
	for time.Now().Before(deadline) {
		f := c.Recv()
		if f.Event == event {
			return f
		}
	}
	c.suite.FailNowf("frame not received", "%s: no %q frame within %v", c.name, event, recvTimeout)
	return Frame{}
}

func (c *WsClient) log(direction string, f Frame) {
	if !c.suite.Config.DebugJSON {
		c.suite.T().Logf("%s %s %s", c.name, direction, f.Event)
		return
	}
	c.suite.T().Logf("%s %s %s %s", c.name, direction, f.Event, string(f.Data))
}
