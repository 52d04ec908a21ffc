package schema

// documentSchemaJSON is the structural contract for a raw workflow document.
// It pins only the envelope the client depends on; additional properties are
// allowed everywhere so newer upstream documents keep validating.
const documentSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["nodes"],
  "properties": {
    "name": {"type": "string"},
    "description": {"type": "string"},
    "version": {"type": "string"},
    "nodes": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "required": ["type"],
        "properties": {
          "id": {"type": "string"},
          "type": {"type": "string"},
          "fields": {
            "type": "object",
            "additionalProperties": {
              "type": "object",
              "properties": {
                "name": {"type": "string"},
                "type": {"type": "string"},
                "label": {"type": "string"},
                "minimum": {"type": "number"},
                "maximum": {"type": "number"},
                "min_length": {"type": "integer", "minimum": 0},
                "max_length": {"type": "integer", "minimum": 0}
              }
            }
          }
        }
      }
    },
    "edges": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["source", "destination"],
        "properties": {
          "source": {"$ref": "#/$defs/endpoint"},
          "destination": {"$ref": "#/$defs/endpoint"}
        }
      }
    },
    "form": {
      "type": "object",
      "properties": {
        "elements": {
          "type": "array",
          "items": {"$ref": "#/$defs/element"}
        }
      }
    }
  },
  "$defs": {
    "endpoint": {
      "type": "object",
      "required": ["node_id", "field"],
      "properties": {
        "node_id": {"type": "string"},
        "field": {"type": "string"}
      }
    },
    "element": {
      "type": "object",
      "required": ["type"],
      "properties": {
        "id": {"type": "string"},
        "type": {"type": "string", "enum": ["container", "node-field"]},
        "label": {"type": "string"},
        "field": {
          "type": "object",
          "required": ["node_id", "field_name"],
          "properties": {
            "node_id": {"type": "string"},
            "field_name": {"type": "string"}
          }
        },
        "children": {
          "type": "array",
          "items": {"$ref": "#/$defs/element"}
        }
      }
    }
  }
}`
