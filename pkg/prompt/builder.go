package prompt

import (
	"github.com/sipeed/sketchcanvas/pkg/media"
)

// FewShotInstruction is the fixed user text of both few-shot user turns.
const FewShotInstruction = "Turn this sketch into a JSON canvas."

// BuildMessageList returns a single user turn: the PNG at imagePath followed
// by userPrompt verbatim.
func BuildMessageList(imagePath, userPrompt string) (MessageList, error) {
	encoded, err := media.EncodeImage(imagePath)
	if err != nil {
		return nil, err
	}
	return BuildEncodedMessageList(encoded, userPrompt), nil
}

// BuildEncodedMessageList is BuildMessageList for an image that is already
// base64-encoded.
func BuildEncodedMessageList(encodedImage, userPrompt string) MessageList {
	return MessageList{imageTurn(encodedImage, userPrompt)}
}

// BuildFewShotMessageList returns a worked example (the example sketch and a
// simulated assistant answer holding exampleCanvasText) followed by the real
// request for the sketch at imagePath.
func BuildFewShotMessageList(imagePath, exampleImagePath, exampleCanvasText string) (MessageList, error) {
	example, err := media.EncodeImage(exampleImagePath)
	if err != nil {
		return nil, err
	}
	target, err := media.EncodeImage(imagePath)
	if err != nil {
		return nil, err
	}
	return BuildEncodedFewShotMessageList(target, example, exampleCanvasText), nil
}

func BuildEncodedFewShotMessageList(encodedImage, encodedExample, exampleCanvasText string) MessageList {
	return MessageList{
		imageTurn(encodedExample, FewShotInstruction),
		{
			Role:    RoleAssistant,
			Content: []ContentBlock{TextBlock(WrapCanvas(exampleCanvasText))},
		},
		imageTurn(encodedImage, FewShotInstruction),
	}
}

// WrapCanvas frames canvas text the way the model is asked to answer.
func WrapCanvas(canvasText string) string {
	return "<canvas>\n" + canvasText + "\n</canvas>"
}

func imageTurn(encodedImage, text string) Turn {
	return Turn{
		Role: RoleUser,
		Content: []ContentBlock{
			ImageBlock(media.PNGMediaType, encodedImage),
			TextBlock(text),
		},
	}
}
