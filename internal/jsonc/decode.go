package jsonc

import "strconv"

// Decode converts the AST into a plain map[string]any / []any / scalar
// tree suitable for handing to a JSON Schema validator as the instance.
func (n *Node) Decode() (any, error) {
	if n == nil {
		return nil, nil
	}
	switch n.Kind {
	case KindObject:
		m := make(map[string]any, len(n.Members))
		for _, mem := range n.Members {
			v, err := mem.Value.Decode()
			if err != nil {
				return nil, err
			}
			m[mem.Key.Value] = v
		}
		return m, nil
	case KindArray:
		a := make([]any, len(n.Elements))
		for i := range n.Elements {
			v, err := n.Elements[i].Decode()
			if err != nil {
				return nil, err
			}
			a[i] = v
		}
		return a, nil
	case KindString:
		return n.Value, nil
	case KindNumber:
		f, err := strconv.ParseFloat(string(n.Raw), 64)
		if err != nil {
			return nil, err
		}
		return f, nil
	case KindBool:
		return string(n.Raw) == "true", nil
	case KindNull:
		return nil, nil
	default:
		return nil, nil
	}
}
