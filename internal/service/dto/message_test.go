package dto

import (
	"encoding/json"
	"testing"
)

func TestTryUnwrapRollDiceRequest(t *testing.T) {
	raw := []byte(`{"request_type":"RollDice","data":{"game_id":"g-1","player":"p-1"}}`)

	var wrapper RequestWrapper
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		t.Fatalf("wrapper should parse, got: %v", err)
	}

	req := TryUnwrapRollDiceRequest(wrapper)
	if req == nil {
		t.Fatalf("RollDice wrapper should unwrap")
	}

	if req.GameID != "g-1" || req.Player != "p-1" {
		t.Fatalf("unwrapped fields wrong, got %+v", req)
	}
}

func TestTryUnwrapRollDiceRequest_WrongTypeIsNil(t *testing.T) {
	wrapper := RequestWrapper{
		ReqType: "JoinGame",
		Data:    json.RawMessage(`{}`),
	}

	if req := TryUnwrapRollDiceRequest(wrapper); req != nil {
		t.Fatalf("non-RollDice wrapper must not unwrap, got %+v", req)
	}
}

func TestTryUnwrapRollDiceRequest_BadPayloadIsNil(t *testing.T) {
	wrapper := RequestWrapper{
		ReqType: REQ_ROLL_DICE,
		Data:    json.RawMessage(`"not an object"`),
	}

	if req := TryUnwrapRollDiceRequest(wrapper); req != nil {
		t.Fatalf("broken payload must not unwrap, got %+v", req)
	}
}

func TestWrapErrResponseCarriesCode(t *testing.T) {
	resp := WrapErrResponse(ERR_CODE_GAME_NOT_FOUND, "boom")

	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal should succeed, got: %v", err)
	}

	var decoded struct {
		RespType string `json:"response_type"`
		Data     struct {
			Code string `json:"code"`
		} `json:"data"`
		ErrMsg string `json:"error_message"`
	}

	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal should succeed, got: %v", err)
	}

	if decoded.RespType != RESP_ERROR {
		t.Fatalf("response_type should be %s, got %s", RESP_ERROR, decoded.RespType)
	}

	if decoded.Data.Code != ERR_CODE_GAME_NOT_FOUND || decoded.ErrMsg != "boom" {
		t.Fatalf("error payload wrong, got %+v", decoded)
	}
}
