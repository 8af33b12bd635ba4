package scene

const analyzePrompt = `你是一个专业的英语学习助手。请分析用户上传的照片，并生成英语学习内容。

## 任务要求

1. **场景识别**：识别照片中的核心场景，输出1个场景标签
2. **物品识别**：识别场景中2-5个关键物品
3. **场景描述**：用英语描述照片内容，不超过50个单词，并提供中文翻译
4. **口语例句**：根据场景推断4个典型角色，每个角色生成2句在此场景下常用的口语表达

## 难度要求
请使用 %s 水平的词汇和句型。

## 输出格式
请严格按照以下 JSON 格式输出（不要输出其他任何内容）：

{
  "scene_tag": "场景英文标签",
  "scene_tag_cn": "场景中文标签",
  "object_tags": [
    {"en": "英文", "cn": "中文", "phonetic": "音标", "pos": "词性"}
  ],
  "description": {
    "en": "英文描述",
    "cn": "中文描述"
  },
  "expressions": {
    "roles": [
      {
        "role_en": "角色英文名",
        "role_cn": "角色中文名",
        "sentences": [
          {"en": "英文例句", "cn": "中文翻译"}
        ]
      }
    ]
  },
  "category": "分类（学习/生活/旅行/美食/其他）"
}`

const basicPrompt = `你是一个专业的英语学习助手。请分析用户上传的照片。

## 任务要求

1. **场景识别**：识别照片中的核心场景，输出1个场景标签
2. **物品识别**：识别场景中2-5个关键物品
3. **场景描述**：用英语描述照片内容，不超过50个单词，并提供中文翻译

## 难度要求
请使用 %s 水平的词汇和句型。

## 输出格式
请严格按照以下 JSON 格式输出（不要输出其他任何内容）：

{
  "scene_tag": "场景英文标签",
  "scene_tag_cn": "场景中文标签",
  "object_tags": [
    {"en": "英文", "cn": "中文", "phonetic": "音标", "pos": "词性"}
  ],
  "description": {
    "en": "英文描述",
    "cn": "中文描述"
  },
  "category": "分类（学习/生活/旅行/美食/其他）"
}`

const expressionsPrompt = `你是一个专业的英语学习助手。请根据以下场景生成口语例句。

## 场景信息
- 场景：%s（%s）
- 分类：%s
- 描述：%s

## 任务要求
根据场景推断4个典型角色，每个角色生成2句在此场景下常用的口语表达，并提供中文翻译。

## 难度要求
请使用 %s 水平的词汇和句型。

## 输出格式
请严格按照以下 JSON 格式输出（不要输出其他任何内容）：

{
  "roles": [
    {
      "role_en": "角色英文名",
      "role_cn": "角色中文名",
      "sentences": [
        {"en": "英文例句", "cn": "中文翻译"}
      ]
    }
  ]
}`
