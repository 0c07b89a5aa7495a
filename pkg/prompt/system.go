package prompt

import "strings"

// DefaultUserPrompt is the user text sent with a zero-shot conversion.
const DefaultUserPrompt = "Create a JSON Canvas. Only output the JSON code."

type Mode string

const (
	ModeDefault   Mode = "default"
	ModeCannoli   Mode = "cannoli"
	ModeVariables Mode = "variables"
)

// ParseMode returns the mode named by s. Unknown names map to ModeDefault.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeCannoli:
		return ModeCannoli
	case ModeVariables:
		return ModeVariables
	default:
		return ModeDefault
	}
}

// SystemPrompt returns the system prompt used for mode.
func SystemPrompt(mode Mode) string {
	switch mode {
	case ModeCannoli:
		return cannoliSystemPrompt
	case ModeVariables:
		return variablesSystemPrompt
	default:
		return defaultSystemPrompt
	}
}

const exampleCanvas = `<canvas>
{
	"nodes":[
		{"id":"node1","type":"text","text":"","x":203,"y":81,"width":25,"height":43,"color":"4"},
		{"id":"node2","type":"text","text":"","x":122,"y":101,"width":33,"height":27},
		{"id":"node3","type":"text","text":"","x":155,"y":151,"width":52,"height":59,"color":"6"}
	],
	"edges":[
		{"id":"edge1","fromNode":"node1","fromSide":"top","toNode":"node2","toSide":"top"},
		{"id":"edge2","fromNode":"node3","fromSide":"top","toNode":"node1","toSide":"left"},
		{"id":"edge3","fromNode":"node2","fromSide":"bottom","toNode":"node3","toSide":"left"}
	]
}
</canvas>
`

const defaultSystemPrompt = `You are an AI engineer working on a prompt workflow.
You have been tasked with creating a JSON Canvas diagram that shows the flow of prompts from a handwritten sketch.

The diagram should be formatted like this:

` + exampleCanvas

const cannoliSystemPrompt = `You are an expert technical diagram converter.
Your task is to create a JSON Canvas diagram from a handwritten sketch.
Start by creating lists of nodes and edges based on the sketch, writing out your thoughts as you go.
All nodes must have a "type" of "text" and a "text" value of "".
All system prompts should be purple nodes and connect to a user prompt.
All user prompts should be gray nodes and connect to an assistant response.
All assistant nodes should be purple nodes.
If no assistant node is present, you should add one connected to the last user node.
Pay extra attention to the direction of the arrows in the sketch. The start of the arrow represents the "fromNode" and the wider end of the arrow represents the "toNode".

EVERY node color must be specified in the node's JSON object as follows:

<colors>
Black or gray: {"type":"text", ... }
Red: {"type":"text", ... , "color":"1"}
Orange: {"type":"text", ... , "color":"2"}
Yellow: {"type":"text", ... , "color":"3"}
Green: {"type":"text", ... , "color":"4"}
Blue: {"type":"text", ... , "color":"5"}
Purple: {"type":"text", ... , "color":"6"}
</colors>

Here is an example of what the completed JSON might look like:

` + exampleCanvas

const variablesSystemPrompt = `You are an AI engineer working on a prompt workflow.
You have been tasked with creating a JSON Canvas diagram that shows the flow of prompts from a handwritten sketch.

To add parameters to the JSON Canvas diagram, you need to add a new node and an edge connecting it to the existing node where the parameter is used.
All parameter nodes have color "6" and are represented as empty text nodes.
Make sure that the new parameter node does not overlap with any existing nodes.

For example, the parameter "country" connected to a node asking "What is the capital of {{country}}?" produces:

<canvas>
{
  "nodes": [
    {"type":"text","text":"What is the capital of {{country}}?","id":"node1","x":-135,"y":-160,"width":270,"height":60},
    {"type":"text","text":"","id":"node2","x":-67,"y":80,"width":135,"height":60,"color":"6"}
  ],
  "edges": [
    {"id":"edge1","label":"country","fromNode":"node2","fromSide":"bottom","toNode":"node1","toSide":"top"}
  ]
}
</canvas>
`
