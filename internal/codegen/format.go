package codegen

import "golang.org/x/tools/imports"

// format gofmts src and drops the imports it does not use.
func format(name string, src []byte) ([]byte, error) {
	out, err := imports.Process(name+".go", src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
