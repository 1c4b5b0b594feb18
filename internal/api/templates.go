package api

const formHTML = `<!DOCTYPE html>
<html>
  <head>
    <meta charset="UTF-8" />
    <title>Live URL Generator</title>
    <style>
      body { font-family: sans-serif; margin: 2em; }
      label { display: block; margin-top: .6em; }
      input { width: 28em; }
      pre { background: #f4f4f4; padding: 1em; }
    </style>
  </head>
  <body>
    <h1>Live URL Generator</h1>
    <p><a href="/">Example data</a> | <a href="/?empty=1">Clear</a></p>
    <form id="inputForm" action="/" method="post">
      {{range .Fields}}
      <label for="{{.Name}}">{{.Label}}</label>
      <input id="{{.Name}}" name="{{.Name}}" type="text" value="{{.Value}}" />
      {{end}}
      <p><button type="submit">Generate URLs</button></p>
    </form>
    {{if .Output}}<pre id="outputLinks">{{.Output}}</pre>{{end}}
  </body>
</html>
`
