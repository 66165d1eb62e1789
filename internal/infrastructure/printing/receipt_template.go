package printing

// receiptHTMLTemplate lays out a ReceiptDocument on an 80mm roll
const receiptHTMLTemplate = `<!DOCTYPE html>
<html lang="th">
<head>
<meta charset="UTF-8">
<title>Receipt {{.Number}}</title>
<style>
  @page { margin: 0; }
  body { width: 72mm; margin: 0; font-family: "Sarabun", "Noto Sans Thai", monospace; font-size: 11px; }
  .center { text-align: center; }
  .store { font-size: 14px; font-weight: bold; }
  .rule { border-top: 1px dashed #000; margin: 4px 0; }
  table { width: 100%; border-collapse: collapse; }
  td { padding: 1px 0; vertical-align: top; }
  td.num { text-align: right; white-space: nowrap; }
  tr.total td { font-weight: bold; font-size: 13px; }
  img.qr { width: 30mm; height: 30mm; }
</style>
</head>
<body>
  <div class="center store">{{.Store.Name}}</div>
  {{if .Store.Address}}<div class="center">{{.Store.Address}}</div>{{end}}
  {{if .Store.TaxID}}<div class="center">Tax ID: {{.Store.TaxID}}</div>{{end}}
  <div class="rule"></div>
  <table>
    <tr><td>Receipt</td><td class="num">{{.Number}}</td></tr>
    <tr><td>Tab {{.TabName}}</td><td class="num">{{formatDateTime .IssuedAt}}</td></tr>
  </table>
  <div class="rule"></div>
  <table class="lines">
    {{range .Lines}}
    <tr><td colspan="2">{{truncate .Name 40}}</td></tr>
    <tr><td>&nbsp;&nbsp;{{.Quantity}} x {{formatAmount .UnitPrice}}</td><td class="num">{{formatAmount .LineTotal}}</td></tr>
    {{end}}
  </table>
  <div class="rule"></div>
  <table>
    <tr><td>Items</td><td class="num">{{.ItemCount}}</td></tr>
    <tr><td>Subtotal</td><td class="num">{{formatMoney .Subtotal}}</td></tr>
    <tr><td>VAT {{.TaxRate}}% (included)</td><td class="num">{{formatMoney .Tax}}</td></tr>
    <tr class="total"><td>TOTAL</td><td class="num">{{formatMoney .Total}}</td></tr>
    <tr><td>Cash</td><td class="num">{{formatMoney .Cash}}</td></tr>
    <tr><td>Change</td><td class="num">{{formatMoney .Change}}</td></tr>
  </table>
  <div class="rule"></div>
  {{if .QRCode}}<div class="center"><img class="qr" src="{{pngDataURI .QRCode}}" alt="QR"></div>{{end}}
  <div class="center">Thank you</div>
</body>
</html>
`
