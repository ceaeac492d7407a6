package helpers

import (
	"fmt"
	"html"
)

// emailLayout — общая обёртка писем. Все аргументы уже должны быть экранированы.
func emailLayout(siteName, heading, body, buttonURL, buttonText, footer string) string {
	return fmt.Sprintf(`
<html>
  <body style="font-family:Arial,'PingFang SC','Microsoft YaHei',sans-serif;background:#f4f7f6;padding:0;margin:0;">
    <table width="100%%" bgcolor="#f4f7f6" cellpadding="0" cellspacing="0" style="padding:30px 0;">
      <tr>
        <td align="center">
          <table width="600" bgcolor="#fff" cellpadding="24" cellspacing="0" style="border-radius:10px;box-shadow:0 2px 8px #e3e3e3;">
            <tr>
              <td>
                <p style="font-size:13px;color:#3a8f7b;margin:0 0 8px 0;">%s</p>
                <h2 style="color:#2c5f55;margin-top:0;">%s</h2>
                <div style="font-size:15px;color:#333;line-height:1.6;">%s</div>
                <p>
                  <a href="%s" style="display:inline-block;padding:12px 24px;background:#3a8f7b;color:#fff;text-decoration:none;border-radius:5px;font-weight:bold;margin-top:16px;">
                    %s
                  </a>
                </p>
                <hr style="border:none;border-top:1px solid #eee;margin:32px 0 12px 0;">
                <p style="font-size:12px;color:#999;margin:0;">%s</p>
              </td>
            </tr>
          </table>
        </td>
      </tr>
    </table>
  </body>
</html>
`, siteName, heading, body, buttonURL, buttonText, footer)
}

func BuildPasswordResetHTML(siteName, userName, resetLink string) string {
	body := fmt.Sprintf(
		"<p>%s，您好：</p><p>我们收到了重置您账户密码的请求。链接10分钟内有效。</p><p>如果这不是您本人的操作，请忽略此邮件。</p>",
		html.EscapeString(userName),
	)
	return emailLayout(
		html.EscapeString(siteName),
		"重置密码",
		body,
		html.EscapeString(resetLink),
		"设置新密码",
		"此邮件由系统自动发送，请勿回复。",
	)
}

func BuildNewCommentHTML(siteName, articleTitle, authorName, content, moderationLink string) string {
	body := fmt.Sprintf(
		"<p><b>%s</b> 在《%s》下发表了新评论，等待审核：</p><blockquote style=\"border-left:3px solid #3a8f7b;margin:0;padding:4px 12px;color:#555;\">%s</blockquote>",
		html.EscapeString(authorName),
		html.EscapeString(articleTitle),
		html.EscapeString(content),
	)
	return emailLayout(
		html.EscapeString(siteName),
		"新评论待审核",
		body,
		html.EscapeString(moderationLink),
		"前往审核",
		"您收到此邮件，是因为您的邮箱被设置为网站联系邮箱。",
	)
}
