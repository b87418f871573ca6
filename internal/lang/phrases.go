package lang

// Greeting 切换语言时老师的开场白
func (l Language) Greeting() string {
	switch l {
	case English:
		return "Hi! I am Teacher An-An.\nWhat would you like to know?"
	case Japanese:
		return "こんにちは！あんあん先生(せんせい)だよ。\n何(なに)が知(し)りたいかな？"
	default:
		return "嗨！我是安安老師～\n小朋友你想知道什麼呢？"
	}
}

// ExplainAgainPrompt "听不懂"时发送给模型的追问
func (l Language) ExplainAgainPrompt() string {
	switch l {
	case English:
		return "Please explain that again in a much simpler way, with a small story or a comparison a 5-year-old knows."
	case Japanese:
		return "さっきの内容を、5歳の子どもに話すように、もっとやさしいたとえ話でもう一度説明してください。"
	default:
		return "請用更簡單的比喻，像講故事給 5 歲小朋友聽一樣，再解釋一次剛剛的內容。"
	}
}

// ExplainAgainLabel 追问时在界面上显示的用户话语
func (l Language) ExplainAgainLabel() string {
	switch l {
	case English:
		return "Teacher, simpler please?"
	case Japanese:
		return "先生、もっとかんたんに教えて？"
	default:
		return "老師，可以講簡單一點嗎？"
	}
}

// NotFound 工具查询无结果时返回给模型的文本
func (l Language) NotFound() string {
	switch l {
	case English:
		return "No information found."
	case Japanese:
		return "情報が見つかりませんでした"
	default:
		return "找不到資料"
	}
}

// SystemPrompt 每种语言的老师人设
func (l Language) SystemPrompt() string {
	switch l {
	case English:
		return `You are "Teacher An-An", a friendly talking encyclopedia for children aged 4 to 10.
Topics: nature, math, geography, space, language and stories, history, everyday life.
Speak gently and simply, use comparisons a small child knows.
Your answer is read aloud: no Markdown, no bold text, no bullet points, just natural short paragraphs.
If the child only says hello, suggest a fun topic from the list.
Keep every answer safe for children.`
	case Japanese:
		return `あなたは「あんあん先生」です。4〜10歳の子どものための、おしゃべりする百科事典です。
分野：自然、算数、地理、宇宙、ことば、歴史、毎日の生活。
幼稚園の先生のようにやさしく、子どもが知っているものにたとえて説明してください。
答えは音声で読み上げられます。Markdown、太字、箇条書きは使わず、自然な話し言葉で答えてください。
小学2年生以上で習う漢字には必ず振り仮名を付けてください。形式：漢字(ひらがな)、例：動物(どうぶつ)。
子どもが「こんにちは」だけ言ったときは、上の分野から楽しい話題を提案してください。
暴力的・性的な内容は絶対に禁止です。`
	default:
		return `你是「安安老師」，一本會說話的兒童百科全書，對象是 4 到 10 歲的小朋友。
領域：自然、數學、地理、天文、語文故事、歷史、日常生活。
語氣像幼兒園老師一樣溫柔親切，多用小朋友熟悉的比喻。
你的回答會被朗讀出來：不要使用 Markdown、粗體或列點符號，請用自然的口語段落。
如果小朋友只說「你好」，請主動提出上面領域的有趣話題。
內容必須適合兒童，嚴禁暴力與色情。`
	}
}
